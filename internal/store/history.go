package store

import (
	"context"
	"time"
)

type QuizSummary struct {
	ID            string    `json:"id"`
	SourceName    string    `json:"sourceName"`
	Model         string    `json:"model,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	QuestionCount int       `json:"questionCount"`
	AttemptCount  int       `json:"attemptCount"`
	BestPercent   *float64  `json:"bestPercent,omitempty"`
}

// ListQuizzes returns the user's quizzes, newest first, with the total count.
func (s *Store) ListQuizzes(ctx context.Context, userID uint, limit, offset int) ([]QuizSummary, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&Quiz{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quizzes []Quiz
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]string, 0, len(quizzes))
	for _, q := range quizzes {
		ids = append(ids, q.ID)
	}

	questionCounts := map[string]int{}
	type attemptRow struct {
		QuizID string
		C      int
		Best   *float64
	}
	attempts := map[string]attemptRow{}
	if len(ids) > 0 {
		type Row struct {
			QuizID string
			C      int
		}
		var rows []Row
		if err := db.Table("quiz_questions").
			Select("quiz_id as quiz_id, COUNT(*) as c").
			Where("quiz_id IN ?", ids).
			Group("quiz_id").
			Scan(&rows).Error; err != nil {
			return nil, 0, err
		}
		for _, r := range rows {
			questionCounts[r.QuizID] = r.C
		}

		var arows []attemptRow
		if err := db.Table("attempts").
			Select("quiz_id as quiz_id, COUNT(*) as c, MAX(score_percent) as best").
			Where("quiz_id IN ?", ids).
			Group("quiz_id").
			Scan(&arows).Error; err != nil {
			return nil, 0, err
		}
		for _, r := range arows {
			attempts[r.QuizID] = r
		}
	}

	items := make([]QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		a := attempts[q.ID]
		items = append(items, QuizSummary{
			ID:            q.ID,
			SourceName:    q.SourceName,
			Model:         q.Model,
			CreatedAt:     q.CreatedAt,
			QuestionCount: questionCounts[q.ID],
			AttemptCount:  a.C,
			BestPercent:   a.Best,
		})
	}
	return items, total, nil
}

type Stats struct {
	TotalQuizzes    int64    `json:"totalQuizzes"`
	TotalAttempts   int64    `json:"totalAttempts"`
	AverageScore    *float64 `json:"averageScore,omitempty"`
	BestScore       *float64 `json:"bestScore,omitempty"`
	TotalAnswers    int64    `json:"totalAnswers"`
	CorrectAnswers  int64    `json:"correctAnswers"`
	Unanswered      int64    `json:"unanswered"`
	AccuracyOverall *float64 `json:"accuracyOverall,omitempty"`
	AttemptsLast30d int64    `json:"attemptsLast30d"`
}

// Stats aggregates the user's attempts. Accuracy counts unanswered questions as wrong.
func (s *Store) Stats(ctx context.Context, userID uint) (Stats, error) {
	db := s.db.WithContext(ctx)
	var st Stats

	if err := db.Model(&Quiz{}).Where("user_id = ?", userID).Count(&st.TotalQuizzes).Error; err != nil {
		return st, err
	}
	if err := db.Model(&Attempt{}).Where("user_id = ?", userID).Count(&st.TotalAttempts).Error; err != nil {
		return st, err
	}

	type RowAgg struct {
		Avg  *float64
		Best *float64
	}
	var agg RowAgg
	if err := db.Table("attempts").
		Where("user_id = ?", userID).
		Select("AVG(score_percent) as avg, MAX(score_percent) as best").
		Scan(&agg).Error; err != nil {
		return st, err
	}
	st.AverageScore = agg.Avg
	st.BestScore = agg.Best

	type RowCnt struct{ C int64 }
	count := func(where string, args ...any) (int64, error) {
		var r RowCnt
		err := db.Table("attempt_answers aa").
			Joins("JOIN attempts a ON a.id = aa.attempt_id").
			Where(where, args...).
			Select("COUNT(*) as c").Scan(&r).Error
		return r.C, err
	}
	var err error
	if st.TotalAnswers, err = count("a.user_id = ?", userID); err != nil {
		return st, err
	}
	if st.CorrectAnswers, err = count("a.user_id = ? AND aa.is_correct = ?", userID, true); err != nil {
		return st, err
	}
	if st.Unanswered, err = count("a.user_id = ? AND aa.selected = ''", userID); err != nil {
		return st, err
	}
	if st.TotalAnswers > 0 {
		acc := float64(st.CorrectAnswers) * 100.0 / float64(st.TotalAnswers)
		st.AccuracyOverall = &acc
	}

	since := time.Now().Add(-30 * 24 * time.Hour)
	if err := db.Model(&Attempt{}).
		Where("user_id = ? AND submitted_at >= ?", userID, since).
		Count(&st.AttemptsLast30d).Error; err != nil {
		return st, err
	}
	return st, nil
}
