package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"vmxio.com/pdf-quiz/internal/config"
	"vmxio.com/pdf-quiz/internal/extract"
	"vmxio.com/pdf-quiz/internal/generate"
	"vmxio.com/pdf-quiz/internal/lib/slogcustom"
	"vmxio.com/pdf-quiz/internal/server"
	"vmxio.com/pdf-quiz/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	flagPort := pflag.String("port", cfg.Port, "HTTP port to listen on")
	flagDB := pflag.String("db", cfg.DBPath, "path to the SQLite database")
	flagImport := pflag.String("import", "data/sample_quiz.json", "question set imported when the database holds no quizzes")
	pflag.Parse()

	log := slog.New(slogcustom.NewHandler(os.Stdout, cfg.LogLevel))
	slog.SetDefault(log)
	if !cfg.EnvFileLoaded {
		log.Debug("no .env file found, using environment variables")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1) DB
	db, err := store.OpenDB(*flagDB)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := store.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	st := store.New(db)

	// 2) Seed (if empty)
	empty, err := store.IsQuizTableEmpty(db)
	if err != nil {
		return fmt.Errorf("count quizzes: %w", err)
	}
	if empty && *flagImport != "" {
		if _, err := os.Stat(*flagImport); err == nil {
			id, err := st.ImportFromJSON(ctx, *flagImport, nil)
			if err != nil {
				return fmt.Errorf("import %s: %w", *flagImport, err)
			}
			log.Info("imported sample quiz", "path", *flagImport, "quiz", id, "page", "/quiz/"+id)
		} else {
			log.Debug("no sample quiz to import", "path", *flagImport)
		}
	}

	// 3) Model + pipeline
	model, closeModel, err := newModel(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeModel()

	gen := generate.New(model,
		generate.WithCount(cfg.QuestionCount),
		generate.WithTimeout(cfg.GenerationTimeout),
		generate.WithRetries(cfg.GenerationRetries),
		generate.WithLogger(log.With("component", "generate")),
	)
	ex := extract.New(cfg.MaxTextChars, log.With("component", "extract"))

	// 4) Expired quizzes
	if cfg.QuizTTL > 0 {
		interval := max(min(cfg.QuizTTL/4, time.Hour), time.Minute)
		go st.RunJanitor(ctx, cfg.QuizTTL, interval, log.With("component", "janitor"))
	}

	// 5) Server
	srv := server.New(server.Options{
		Extractor:            ex,
		Generator:            gen,
		Store:                st,
		MaxUploadBytes:       cfg.MaxUploadBytes,
		AllowClientQuestions: cfg.AllowClientQuestions,
		SecureCookies:        cfg.SecureCookies,
		CORSOrigins:          cfg.CORSOrigins,
		Logger:               log.With("component", "server"),
	})

	log.Info("starting pdf quiz",
		"provider", cfg.LLMProvider,
		"model", gen.ModelName(),
		"questions", cfg.QuestionCount,
		"secureCookies", cfg.SecureCookies,
	)
	return srv.Run(ctx, ":"+*flagPort)
}

func newModel(ctx context.Context, cfg config.Config) (generate.Model, func(), error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return generate.NewOpenAIModel(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel), func() {}, nil
	default:
		m, err := generate.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, nil, fmt.Errorf("gemini client: %w", err)
		}
		return m, func() { _ = m.Close() }, nil
	}
}
