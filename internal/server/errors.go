package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vmxio.com/pdf-quiz/internal/extract"
	"vmxio.com/pdf-quiz/internal/generate"
	"vmxio.com/pdf-quiz/internal/store"
)

const errorCodeHeader = "X-Error-Code"

const (
	codeNoFile            = "no_file_provided"
	codeFileTooLarge      = "file_too_large"
	codeExtraction        = "extraction_failed"
	codeGeneration        = "generation_failed"
	codeGenerationTimeout = "generation_timeout"
	codeMissingData       = "missing_submission_data"
	codeMalformed         = "malformed_submission"
	codeQuizNotFound      = "quiz_not_found"
	codeNotFound          = "not_found"
	codeBadRequest        = "bad_request"
	codeUnauthorized      = "unauthorized"
	codeInternal          = "internal"
)

// httpError is a failure already mapped to a status, a code and a client message.
type httpError struct {
	Status int
	Code   string
	Msg    string
}

func (e *httpError) Error() string { return e.Msg }

// pipelineError maps an extraction or generation failure. The message keeps
// the wording the upload page has always shown.
func pipelineError(err error) *httpError {
	msg := "An error occurred while generating MCQs: " + err.Error()
	switch {
	case errors.Is(err, generate.ErrGenerationTimeout):
		return &httpError{Status: http.StatusGatewayTimeout, Code: codeGenerationTimeout, Msg: msg}
	case errors.Is(err, extract.ErrExtraction):
		return &httpError{Status: http.StatusInternalServerError, Code: codeExtraction, Msg: msg}
	case errors.Is(err, generate.ErrGeneration):
		return &httpError{Status: http.StatusInternalServerError, Code: codeGeneration, Msg: msg}
	default:
		return &httpError{Status: http.StatusInternalServerError, Code: codeInternal, Msg: msg}
	}
}

func quizLookupError(err error) *httpError {
	if errors.Is(err, store.ErrNotFound) {
		return &httpError{Status: http.StatusNotFound, Code: codeQuizNotFound, Msg: "Quiz not found"}
	}
	return &httpError{Status: http.StatusInternalServerError, Code: codeInternal, Msg: "db"}
}

func fail(c *gin.Context, status int, code, msg string) {
	c.Header(errorCodeHeader, code)
	c.String(status, msg)
}

func failJSON(c *gin.Context, status int, code, msg string) {
	c.Header(errorCodeHeader, code)
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func failErr(c *gin.Context, e *httpError)     { fail(c, e.Status, e.Code, e.Msg) }
func failErrJSON(c *gin.Context, e *httpError) { failJSON(c, e.Status, e.Code, e.Msg) }
