package store

import (
	"context"
	"log/slog"
	"time"
)

// RunJanitor purges quizzes older than ttl every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, ttl, interval time.Duration, log *slog.Logger) {
	sweep := func() {
		n, err := s.PurgeBefore(ctx, time.Now().Add(-ttl))
		switch {
		case err != nil && ctx.Err() == nil:
			log.Error("purge expired quizzes", "err", err)
		case n > 0:
			log.Info("purged expired quizzes", "count", n)
		}
	}

	sweep()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			sweep()
		}
	}
}
