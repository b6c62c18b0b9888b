package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"vmxio.com/pdf-quiz/internal/quiz"
	"vmxio.com/pdf-quiz/internal/store"
)

/*** DTOs ***/

// QuestionDTO is a question as shown to the test taker, without the answer key.
type QuestionDTO struct {
	Position int      `json:"position"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type CreateQuizResponse struct {
	QuizID     string        `json:"quizId"`
	SourceName string        `json:"sourceName"`
	Questions  []QuestionDTO `json:"questions"`
}

type AnswerReq struct {
	Answers map[string]string `json:"answers"` // "1" -> "Paris"
}

type AttemptResponse struct {
	AttemptID    string  `json:"attemptId,omitempty"`
	ScorePercent float64 `json:"scorePercent"`
	quiz.Result
}

/*** Quiz lifecycle ***/

// POST /api/v1/quizzes
func (s *Server) apiCreateQuiz(c *gin.Context) {
	q, herr := s.createFromUpload(c)
	if herr != nil {
		failErrJSON(c, herr)
		return
	}
	out := make([]QuestionDTO, 0, len(q.Questions))
	for i, item := range q.Questions {
		out = append(out, QuestionDTO{Position: i + 1, Question: item.Text, Options: item.Options})
	}
	c.JSON(http.StatusCreated, CreateQuizResponse{QuizID: q.ID, SourceName: q.Source, Questions: out})
}

// POST /api/v1/quizzes/:id/answers
func (s *Server) apiAnswerQuiz(c *gin.Context) {
	quizID := c.Param("id")

	var req AnswerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failJSON(c, http.StatusBadRequest, codeMalformed, "bad request")
		return
	}
	sub := quiz.Submission{}
	for k, v := range req.Answers {
		pos, err := strconv.Atoi(k)
		if err != nil || pos < 1 {
			failJSON(c, http.StatusBadRequest, codeMalformed, "answer keys must be question positions")
			return
		}
		sub[pos] = v
	}

	questions, err := s.opts.Store.QuizQuestions(c.Request.Context(), quizID)
	if err != nil {
		failErrJSON(c, quizLookupError(err))
		return
	}

	res := quiz.Score(questions, sub)
	attemptID := s.recordResult(c, quizID, res)
	c.JSON(http.StatusOK, AttemptResponse{
		AttemptID:    attemptID,
		ScorePercent: res.Percent(),
		Result:       res,
	})
}

/*** History & stats ***/

// ListMyQuizzes returns the caller's quizzes with pagination.
// Query params: ?limit=20&offset=0  (limit default 20, max 100)
func ListMyQuizzes(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := currentUserID(c)
		if !ok {
			failJSON(c, http.StatusUnauthorized, codeUnauthorized, "no user")
			return
		}

		limit := 20
		offset := 0
		if l := c.Query("limit"); l != "" {
			if n, err := strconv.Atoi(l); err == nil && n > 0 {
				limit = min(n, 100)
			}
		}
		if o := c.Query("offset"); o != "" {
			if n, err := strconv.Atoi(o); err == nil && n >= 0 {
				offset = n
			}
		}

		items, total, err := st.ListQuizzes(c.Request.Context(), uid, limit, offset)
		if err != nil {
			failJSON(c, http.StatusInternalServerError, codeInternal, "db")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items":  items,
			"total":  total,
			"limit":  limit,
			"offset": offset,
		})
	}
}

// GetMyAttempt returns a stored attempt. Attempts of other users look missing.
func GetMyAttempt(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := currentUserID(c)
		if !ok {
			failJSON(c, http.StatusUnauthorized, codeUnauthorized, "no user")
			return
		}
		review, err := st.GetAttempt(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				failJSON(c, http.StatusNotFound, codeNotFound, "attempt not found")
				return
			}
			failJSON(c, http.StatusInternalServerError, codeInternal, "db")
			return
		}
		if review.UserID == nil || *review.UserID != uid {
			failJSON(c, http.StatusNotFound, codeNotFound, "attempt not found")
			return
		}
		c.JSON(http.StatusOK, review)
	}
}

func MyStats(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := currentUserID(c)
		if !ok {
			failJSON(c, http.StatusUnauthorized, codeUnauthorized, "no user")
			return
		}
		stats, err := st.Stats(c.Request.Context(), uid)
		if err != nil {
			failJSON(c, http.StatusInternalServerError, codeInternal, "db")
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

/*** Profile ***/

type MeResponse struct {
	PublicID    string  `json:"publicId"`
	DisplayName *string `json:"displayName,omitempty"`
}

type MeUpdateReq struct {
	DisplayName *string `json:"displayName"`
}

type RestoreReq struct {
	PublicID string `json:"publicId"`
}

// GET /api/v1/me
func GetMe(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		pubID := c.GetString(ctxUserPublicID)
		u, err := st.UserByPublicID(c.Request.Context(), pubID)
		if err != nil {
			failJSON(c, http.StatusUnauthorized, codeUnauthorized, "user not found")
			return
		}
		c.JSON(http.StatusOK, MeResponse{PublicID: u.PublicID, DisplayName: u.DisplayName})
	}
}

// PUT /api/v1/me
func UpdateMe(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := currentUserID(c)
		if !ok {
			failJSON(c, http.StatusUnauthorized, codeUnauthorized, "no user")
			return
		}

		var req MeUpdateReq
		if err := c.ShouldBindJSON(&req); err != nil || req.DisplayName == nil {
			failJSON(c, http.StatusBadRequest, codeBadRequest, "bad request")
			return
		}
		name := strings.TrimSpace(*req.DisplayName)
		if n := len([]rune(name)); n < 2 || n > 40 {
			failJSON(c, http.StatusBadRequest, codeBadRequest, "displayName must be 2..40 chars")
			return
		}

		u, err := st.UpdateDisplayName(c.Request.Context(), uid, name)
		if err != nil {
			failJSON(c, http.StatusInternalServerError, codeInternal, "db")
			return
		}
		c.JSON(http.StatusOK, MeResponse{PublicID: u.PublicID, DisplayName: u.DisplayName})
	}
}

// RestoreAccount points the cookie at an existing anonymous user, e.g. on a new device.
func RestoreAccount(st *store.Store, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RestoreReq
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PublicID) == "" {
			failJSON(c, http.StatusBadRequest, codeBadRequest, "publicId required")
			return
		}
		u, err := st.UserByPublicID(c.Request.Context(), strings.TrimSpace(req.PublicID))
		if err != nil {
			failJSON(c, http.StatusNotFound, codeNotFound, "user not found")
			return
		}
		setUserCookie(c, u.PublicID, secureCookies)
		c.JSON(http.StatusOK, gin.H{"status": "restored"})
	}
}
