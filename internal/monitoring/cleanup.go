package monitoring

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/isdelr/mylibrary-be/internal/logger"
	"github.com/isdelr/mylibrary-be/internal/repository"
)

// AccountJanitor periodically removes accounts that never verified their
// email address within the configured window.
type AccountJanitor struct {
	users  repository.UserRepository
	maxAge time.Duration
	cron   *cron.Cron
	log    zerolog.Logger
}

// NewAccountJanitor creates a new janitor instance.
func NewAccountJanitor(users repository.UserRepository, maxAge time.Duration) *AccountJanitor {
	return &AccountJanitor{
		users:  users,
		maxAge: maxAge,
		cron:   cron.New(),
		log:    logger.Component("janitor"),
	}
}

// Start schedules the hourly sweep and runs one immediately.
func (j *AccountJanitor) Start() {
	j.log.Info().Dur("max_age", j.maxAge).Msg("Starting unverified-account janitor")
	j.cron.AddFunc("@hourly", j.sweep)
	j.cron.Start()
	go j.sweep()
}

// Stop halts the sweep schedule.
func (j *AccountJanitor) Stop() {
	j.cron.Stop()
	j.log.Info().Msg("Stopped unverified-account janitor")
}

// sweep deletes unverified accounts older than the window.
func (j *AccountJanitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-j.maxAge)
	n, err := j.users.DeleteUnverifiedBefore(ctx, cutoff)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to purge unverified accounts")
		return
	}
	if n > 0 {
		j.log.Info().Int64("purged", n).Time("cutoff", cutoff).Msg("Purged unverified accounts")
	}
}
