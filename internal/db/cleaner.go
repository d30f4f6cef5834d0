package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultCleanupInterval replaces a non-positive cleaner interval.
const DefaultCleanupInterval = time.Hour

// PurgeExpiredSessions deletes sessions that expired before now and returns
// how many were removed.
func PurgeExpiredSessions(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}

// StartSessionCleaner runs PurgeExpiredSessions every interval in a background
// goroutine until ctx is done. Failures are logged and retried on the next tick.
// A non-positive interval falls back to DefaultCleanupInterval.
func StartSessionCleaner(ctx context.Context, db *sql.DB, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		log.Warn("invalid session cleanup interval, using default",
			zap.Duration("interval", interval), zap.Duration("default", DefaultCleanupInterval))
		interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := PurgeExpiredSessions(ctx, db, now)
				if err != nil {
					if ctx.Err() == nil {
						log.Error("failed to clean expired sessions", zap.Error(err))
					}
					continue
				}
				if n > 0 {
					log.Info("cleaned expired sessions", zap.Int64("removed", n))
				}
			}
		}
	}()
}
