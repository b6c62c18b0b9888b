package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Port    string
	GinMode string
	DBPath  string

	LLMProvider  string
	GeminiAPIKey string
	LLMModel     string
	LLMBaseURL   string // openai-compatible endpoint, e.g. http://localhost:11434/v1
	LLMAPIKey    string

	QuestionCount     int
	MaxTextChars      int // 0 = unbounded
	MaxUploadBytes    int64
	GenerationTimeout time.Duration
	GenerationRetries int

	AllowClientQuestions bool
	QuizTTL              time.Duration

	SecureCookies bool
	CORSOrigins   []string
	LogLevel      slog.Level

	// EnvFileLoaded reports whether a .env file was read.
	EnvFileLoaded bool
}

// Load reads .env (if present) and then the process environment.
func Load() Config {
	envFile := godotenv.Load() == nil

	provider := strings.ToLower(envOr("LLM_PROVIDER", ProviderGemini))
	defModel := "gemini-flash-lite-latest"
	if provider == ProviderOpenAI {
		defModel = "qwen3:1.7b"
	}

	return Config{
		Port:    envOr("PORT", "8080"),
		GinMode: envOr("GIN_MODE", "debug"),
		DBPath:  envOr("DB_PATH", "quiz.db"),

		LLMProvider:  provider,
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		LLMModel:     envOr("LLM_MODEL", defModel),
		LLMBaseURL:   envOr("LLM_BASE_URL", "http://localhost:11434/v1"),
		LLMAPIKey:    os.Getenv("LLM_API_KEY"),

		QuestionCount:     envInt("QUESTION_COUNT", 10),
		MaxTextChars:      envInt("MAX_TEXT_CHARS", 30000),
		MaxUploadBytes:    int64(envInt("MAX_UPLOAD_BYTES", 32<<20)),
		GenerationTimeout: envDuration("GENERATION_TIMEOUT", 90*time.Second),
		GenerationRetries: envInt("GENERATION_RETRIES", 1),

		AllowClientQuestions: envBool("ALLOW_CLIENT_QUESTIONS", true),
		QuizTTL:              envDuration("QUIZ_TTL", 24*time.Hour),

		SecureCookies: envBool("SECURE_COOKIES", false),
		CORSOrigins:   csvOr("CORS_ORIGINS", "http://localhost:3000"),
		LogLevel:      envLevel("LOG_LEVEL", slog.LevelInfo),

		EnvFileLoaded: envFile,
	}
}

func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenAI:
		if c.LLMBaseURL == "" {
			return errors.New("LLM_BASE_URL is required for the openai provider")
		}
	default:
		return errors.New("unknown LLM_PROVIDER " + strconv.Quote(c.LLMProvider))
	}
	if c.QuestionCount <= 0 {
		return errors.New("QUESTION_COUNT must be positive")
	}
	if c.MaxTextChars < 0 {
		return errors.New("MAX_TEXT_CHARS must not be negative")
	}
	if c.GenerationTimeout <= 0 {
		return errors.New("GENERATION_TIMEOUT must be positive")
	}
	if c.GenerationRetries < 0 {
		return errors.New("GENERATION_RETRIES must not be negative")
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envLevel(k string, def slog.Level) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(os.Getenv(k))); err != nil {
		return def
	}
	return l
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
