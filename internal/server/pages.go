package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"vmxio.com/pdf-quiz/internal/quiz"
	"vmxio.com/pdf-quiz/internal/store"
)

// room for multipart boundaries and headers on top of the file itself
const multipartSlack = 1 << 20

type generatedQuiz struct {
	ID        string
	Source    string
	Questions []quiz.Question
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"MaxUploadMB": s.opts.MaxUploadBytes >> 20,
	})
}

// POST /upload
func (s *Server) upload(c *gin.Context) {
	q, herr := s.createFromUpload(c)
	if herr != nil {
		failErr(c, herr)
		return
	}
	c.HTML(http.StatusOK, "quiz.html", gin.H{
		"Source":    q.Source,
		"Token":     q.ID,
		"Questions": q.Questions,
	})
}

// GET /quiz/:id renders a stored quiz, e.g. the imported sample.
func (s *Server) showQuiz(c *gin.Context) {
	id := c.Param("id")
	q, err := s.opts.Store.GetQuiz(c.Request.Context(), id)
	if err != nil {
		failErr(c, quizLookupError(err))
		return
	}
	questions, err := s.opts.Store.QuizQuestions(c.Request.Context(), id)
	if err != nil {
		failErr(c, quizLookupError(err))
		return
	}
	c.HTML(http.StatusOK, "quiz.html", gin.H{
		"Source":    q.SourceName,
		"Token":     q.ID,
		"Questions": questions,
	})
}

// POST /submit
func (s *Server) submit(c *gin.Context) {
	questions, quizID, herr := s.submittedQuestions(c)
	if herr != nil {
		if herr.Code == codeMissingData {
			c.Header(errorCodeHeader, herr.Code)
			c.Redirect(http.StatusFound, "/")
			return
		}
		failErr(c, herr)
		return
	}

	res := quiz.Score(questions, quiz.SubmissionFromForm(len(questions), c.PostForm))
	s.recordResult(c, quizID, res)

	c.HTML(http.StatusOK, "results.html", gin.H{"Result": res})
}

// createFromUpload reads the "pdf" part, extracts its text, asks the model for
// questions and stores them. The returned quiz ID is the token clients submit back.
func (s *Server) createFromUpload(c *gin.Context) (generatedQuiz, *httpError) {
	if s.opts.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes+multipartSlack)
	}

	fh, err := c.FormFile("pdf")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			uploadsTotal.WithLabelValues("too_large").Inc()
			return generatedQuiz{}, &httpError{Status: http.StatusRequestEntityTooLarge, Code: codeFileTooLarge, Msg: "File too large"}
		}
		uploadsTotal.WithLabelValues("no_file").Inc()
		// an empty filename arrives as a plain form value
		if _, ok := c.GetPostForm("pdf"); ok && errors.Is(err, http.ErrMissingFile) {
			return generatedQuiz{}, &httpError{Status: http.StatusBadRequest, Code: codeNoFile, Msg: "No selected file"}
		}
		return generatedQuiz{}, &httpError{Status: http.StatusBadRequest, Code: codeNoFile, Msg: "No file part"}
	}
	if fh.Filename == "" {
		uploadsTotal.WithLabelValues("no_file").Inc()
		return generatedQuiz{}, &httpError{Status: http.StatusBadRequest, Code: codeNoFile, Msg: "No selected file"}
	}
	if s.opts.MaxUploadBytes > 0 && fh.Size > s.opts.MaxUploadBytes {
		uploadsTotal.WithLabelValues("too_large").Inc()
		return generatedQuiz{}, &httpError{Status: http.StatusRequestEntityTooLarge, Code: codeFileTooLarge, Msg: "File too large"}
	}

	f, err := fh.Open()
	if err != nil {
		return generatedQuiz{}, &httpError{Status: http.StatusInternalServerError, Code: codeInternal, Msg: "could not read upload"}
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		return generatedQuiz{}, &httpError{Status: http.StatusInternalServerError, Code: codeInternal, Msg: "could not read upload"}
	}

	ctx := c.Request.Context()
	log := s.log.With("file", fh.Filename, "bytes", len(data))

	text, err := s.opts.Extractor.Extract(ctx, data)
	if err != nil {
		uploadsTotal.WithLabelValues("extraction_failed").Inc()
		log.Warn("extraction failed", "err", err)
		return generatedQuiz{}, pipelineError(err)
	}

	start := time.Now()
	questions, err := s.opts.Generator.Generate(ctx, text)
	if err != nil {
		herr := pipelineError(err)
		generationDuration.WithLabelValues(herr.Code).Observe(time.Since(start).Seconds())
		uploadsTotal.WithLabelValues(herr.Code).Inc()
		log.Warn("generation failed", "err", err)
		return generatedQuiz{}, herr
	}
	generationDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	id, err := s.opts.Store.CreateQuiz(ctx, store.NewQuiz{
		UserID:     currentUserPtr(c),
		SourceName: fh.Filename,
		TextChars:  utf8.RuneCountInString(text),
		Model:      s.opts.Generator.ModelName(),
		Questions:  questions,
	})
	if err != nil {
		uploadsTotal.WithLabelValues(codeInternal).Inc()
		log.Error("store quiz", "err", err)
		return generatedQuiz{}, &httpError{Status: http.StatusInternalServerError, Code: codeInternal, Msg: "db"}
	}

	uploadsTotal.WithLabelValues("ok").Inc()
	log.Info("quiz generated", "quiz", id, "questions", len(questions))
	return generatedQuiz{ID: id, Source: fh.Filename, Questions: questions}, nil
}

// submittedQuestions resolves the question set a form submission is graded
// against: the stored quiz named by quiz_token, else the echoed questions_data
// when client-held questions are allowed.
func (s *Server) submittedQuestions(c *gin.Context) ([]quiz.Question, string, *httpError) {
	if token := strings.TrimSpace(c.PostForm("quiz_token")); token != "" {
		qs, err := s.opts.Store.QuizQuestions(c.Request.Context(), token)
		if err != nil {
			return nil, "", quizLookupError(err)
		}
		return qs, token, nil
	}

	data := c.PostForm("questions_data")
	if data == "" || !s.opts.AllowClientQuestions {
		return nil, "", &httpError{Status: http.StatusFound, Code: codeMissingData, Msg: "missing submission data"}
	}
	var qs []quiz.Question
	if err := json.Unmarshal([]byte(data), &qs); err != nil {
		return nil, "", &httpError{Status: http.StatusBadRequest, Code: codeMalformed, Msg: "Malformed questions_data"}
	}
	if len(qs) == 0 {
		return nil, "", &httpError{Status: http.StatusBadRequest, Code: codeMalformed, Msg: "Malformed questions_data: no questions"}
	}
	for i, q := range qs {
		if err := q.Validate(); err != nil {
			return nil, "", &httpError{Status: http.StatusBadRequest, Code: codeMalformed, Msg: fmt.Sprintf("Malformed questions_data: question %d: %v", i+1, err)}
		}
	}
	return qs, "", nil
}

// recordResult counts the submission and stores it when it belongs to a stored quiz.
// A failed write is logged; the user still gets their score.
func (s *Server) recordResult(c *gin.Context, quizID string, res quiz.Result) string {
	source := "client"
	if quizID != "" {
		source = "stored"
	}
	submissionsTotal.WithLabelValues(source).Inc()
	if res.Total > 0 {
		scoreRatio.Observe(float64(res.Score) / float64(res.Total))
	}
	if quizID == "" {
		return ""
	}

	id, err := s.opts.Store.RecordAttempt(c.Request.Context(), quizID, currentUserPtr(c), res)
	if err != nil {
		s.log.Error("record attempt", "quiz", quizID, "err", err)
		return ""
	}
	return id
}
