package store

import (
	"time"
)

// --- User ---

type User struct {
	ID          uint   `gorm:"primaryKey"`
	PublicID    string `gorm:"uniqueIndex;size:36;not null"` // UUID held in the browser cookie
	DisplayName *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// --- Quizzes ---

// Quiz is one generated question set. ID is the opaque token handed to the client.
type Quiz struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserID     *uint     `gorm:"index"`
	SourceName string    `gorm:"not null"`
	TextChars  int       `gorm:"not null"`
	Model      string    `gorm:"size:64"`
	CreatedAt  time.Time `gorm:"index"`

	Questions []QuizQuestion
	Attempts  []Attempt
}

type QuizQuestion struct {
	ID            uint   `gorm:"primaryKey"`
	QuizID        string `gorm:"index;not null"`
	Position      int    `gorm:"not null"` // 1..N
	Text          string `gorm:"not null"`
	OptionsRaw    string `gorm:"not null"` // JSON: ["Paris","Lyon","Nice","Marseille"]
	CorrectAnswer string `gorm:"not null"`
}

// --- Attempts ---

type Attempt struct {
	ID           string    `gorm:"primaryKey;size:36"`
	QuizID       string    `gorm:"index;not null"`
	UserID       *uint     `gorm:"index"`
	Score        int       `gorm:"not null"`
	Total        int       `gorm:"not null"`
	ScorePercent float64   `gorm:"not null"`
	SubmittedAt  time.Time `gorm:"not null"`

	Answers []AttemptAnswer
}

type AttemptAnswer struct {
	ID        uint   `gorm:"primaryKey"`
	AttemptID string `gorm:"index;not null"`
	Position  int    `gorm:"not null"`
	Selected  string `gorm:"not null"` // empty when unanswered
	IsCorrect bool   `gorm:"not null"`
}
