// Package server exposes the upload / quiz / results pages and the JSON API.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vmxio.com/pdf-quiz/internal/quiz"
	"vmxio.com/pdf-quiz/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

type QuestionGenerator interface {
	Generate(ctx context.Context, text string) ([]quiz.Question, error)
	ModelName() string
}

type Options struct {
	Extractor Extractor
	Generator QuestionGenerator
	Store     *store.Store

	MaxUploadBytes       int64
	AllowClientQuestions bool
	SecureCookies        bool
	CORSOrigins          []string

	Logger *slog.Logger
}

type Server struct {
	opts   Options
	log    *slog.Logger
	engine *gin.Engine
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{opts: opts, log: opts.Logger}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if slices.Contains(s.opts.CORSOrigins, origin) {
				return true
			}
			// any http://localhost:PORT during development
			return strings.HasPrefix(origin, "http://localhost:")
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", publicIDHeader},
		ExposeHeaders:    []string{publicIDHeader, errorCodeHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.SetHTMLTemplate(template.Must(
		template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html"),
	))

	// probes stay outside the user middleware
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	app := r.Group("/", EnsureUser(s.opts.Store, s.opts.SecureCookies))
	{
		app.GET("/", s.index)
		app.POST("/upload", s.upload)
		app.GET("/quiz/:id", s.showQuiz)
		app.POST("/submit", s.submit)
	}

	api := app.Group("/api/v1")
	{
		api.POST("/quizzes", s.apiCreateQuiz)
		api.POST("/quizzes/:id/answers", s.apiAnswerQuiz)
		api.GET("/quizzes", ListMyQuizzes(s.opts.Store))
		api.GET("/attempts/:id", GetMyAttempt(s.opts.Store))
		api.GET("/stats", MyStats(s.opts.Store))

		api.GET("/me", GetMe(s.opts.Store))
		api.PUT("/me", UpdateMe(s.opts.Store))
		api.POST("/me/restore", RestoreAccount(s.opts.Store, s.opts.SecureCookies))
	}
	return r
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
	"percent": func(r quiz.Result) string { return fmt.Sprintf("%.0f%%", r.Percent()) },
}
