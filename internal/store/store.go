// Package store keeps generated quizzes and scored attempts in SQLite, so the
// answer key never has to be trusted from the client.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vmxio.com/pdf-quiz/internal/quiz"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- Users ---

// EnsureUser returns the user owning publicID, creating it on first sight.
func (s *Store) EnsureUser(ctx context.Context, publicID string) (User, error) {
	var u User
	err := s.db.WithContext(ctx).
		Where(User{PublicID: publicID}).
		FirstOrCreate(&u).Error
	return u, err
}

func (s *Store) UserByPublicID(ctx context.Context, publicID string) (User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, "public_id = ?", publicID).Error; err != nil {
		return User{}, notFound(err)
	}
	return u, nil
}

func (s *Store) UpdateDisplayName(ctx context.Context, userID uint, name string) (User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		return User{}, notFound(err)
	}
	u.DisplayName = &name
	if err := s.db.WithContext(ctx).Save(&u).Error; err != nil {
		return User{}, err
	}
	return u, nil
}

// --- Quizzes ---

type NewQuiz struct {
	UserID     *uint
	SourceName string
	TextChars  int
	Model      string
	Questions  []quiz.Question
}

// CreateQuiz stores the question set and returns its token.
func (s *Store) CreateQuiz(ctx context.Context, in NewQuiz) (string, error) {
	id := uuid.New().String()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := Quiz{
			ID:         id,
			UserID:     in.UserID,
			SourceName: in.SourceName,
			TextChars:  in.TextChars,
			Model:      in.Model,
		}
		if err := tx.Create(&q).Error; err != nil {
			return err
		}
		for i, item := range in.Questions {
			opts, err := json.Marshal(item.Options)
			if err != nil {
				return err
			}
			row := QuizQuestion{
				QuizID:        id,
				Position:      i + 1,
				Text:          item.Text,
				OptionsRaw:    string(opts),
				CorrectAnswer: item.CorrectAnswer,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("create quiz: %w", err)
	}
	return id, nil
}

func (s *Store) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	var q Quiz
	if err := s.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return Quiz{}, notFound(err)
	}
	return q, nil
}

// QuizQuestions returns the stored questions of a quiz in display order.
func (s *Store) QuizQuestions(ctx context.Context, id string) ([]quiz.Question, error) {
	if _, err := s.GetQuiz(ctx, id); err != nil {
		return nil, err
	}
	var rows []QuizQuestion
	if err := s.db.WithContext(ctx).
		Where("quiz_id = ?", id).
		Order("position").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]quiz.Question, 0, len(rows))
	for _, r := range rows {
		var opts []string
		if err := json.Unmarshal([]byte(r.OptionsRaw), &opts); err != nil {
			return nil, fmt.Errorf("quiz %s question %d: %w", id, r.Position, err)
		}
		out = append(out, quiz.Question{Text: r.Text, Options: opts, CorrectAnswer: r.CorrectAnswer})
	}
	return out, nil
}

// --- Attempts ---

// RecordAttempt persists a scored submission and returns the attempt id.
func (s *Store) RecordAttempt(ctx context.Context, quizID string, userID *uint, res quiz.Result) (string, error) {
	id := uuid.New().String()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a := Attempt{
			ID:           id,
			QuizID:       quizID,
			UserID:       userID,
			Score:        res.Score,
			Total:        res.Total,
			ScorePercent: res.Percent(),
			SubmittedAt:  time.Now(),
		}
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
		for i, e := range res.Entries {
			row := AttemptAnswer{AttemptID: id, Position: i + 1, IsCorrect: e.IsCorrect}
			if e.Answered {
				row.Selected = e.UserAnswer
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("record attempt: %w", err)
	}
	return id, nil
}

type AttemptReview struct {
	ID          string      `json:"id"`
	QuizID      string      `json:"quizId"`
	UserID      *uint       `json:"-"`
	SubmittedAt time.Time   `json:"submittedAt"`
	Result      quiz.Result `json:"result"`
}

// GetAttempt rebuilds the per-question breakdown of a stored attempt.
func (s *Store) GetAttempt(ctx context.Context, id string) (AttemptReview, error) {
	var a Attempt
	if err := s.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&a, "id = ?", id).Error; err != nil {
		return AttemptReview{}, notFound(err)
	}
	questions, err := s.QuizQuestions(ctx, a.QuizID)
	if err != nil {
		return AttemptReview{}, err
	}

	sub := quiz.Submission{}
	for _, ans := range a.Answers {
		if ans.Selected != "" {
			sub[ans.Position] = ans.Selected
		}
	}
	return AttemptReview{
		ID:          a.ID,
		QuizID:      a.QuizID,
		UserID:      a.UserID,
		SubmittedAt: a.SubmittedAt,
		Result:      quiz.Score(questions, sub),
	}, nil
}

// PurgeBefore deletes quizzes created before cutoff together with their attempts.
func (s *Store) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&Quiz{}).Where("created_at < ?", cutoff).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		attempts := tx.Model(&Attempt{}).Select("id").Where("quiz_id IN ?", ids)
		if err := tx.Where("attempt_id IN (?)", attempts).Delete(&AttemptAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id IN ?", ids).Delete(&Attempt{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id IN ?", ids).Delete(&QuizQuestion{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&Quiz{})
		n = res.RowsAffected
		return res.Error
	})
	return n, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
