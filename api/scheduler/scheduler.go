package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/models"
)

// SweepSpec runs the expiry sweep at the top of every minute
const SweepSpec = "* * * * *"

// Notifier is told when the sweep changed stored state
type Notifier interface {
	Broadcast()
}

// Scheduler closes voting rounds and contribution rounds whose end time has passed
type Scheduler struct {
	cron     *cron.Cron
	VDB      databases.VoteDatabase
	CRDB     databases.ContributionRoundDatabase
	Notifier Notifier
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance
func NewScheduler(vDB databases.VoteDatabase, crDB databases.ContributionRoundDatabase, n Notifier) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		VDB:      vDB,
		CRDB:     crDB,
		Notifier: n,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc(SweepSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.Sweep(ctx)
	})
	if err != nil {
		zap.S().Errorw("failed to register expiry sweep", "error", err)
		return
	}

	s.cron.Start()
	zap.S().Info("expiry scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("expiry scheduler stopped")
}

// Sweep runs one expiry pass and reports whether anything changed
func (s *Scheduler) Sweep(ctx context.Context) bool {
	now := s.now()
	changed := false

	completed, err := s.VDB.CompleteExpired(ctx, now)
	if err != nil {
		zap.S().Errorw("failed to complete expired votes", "error", err)
	} else if completed > 0 {
		zap.S().Infow("completed expired votes", "count", completed)
		changed = true
	}

	if s.stopExpiredRounds(ctx, now) {
		changed = true
	}

	if changed && s.Notifier != nil {
		s.Notifier.Broadcast()
	}
	return changed
}

func (s *Scheduler) stopExpiredRounds(ctx context.Context, now time.Time) bool {
	rounds, err := databases.ExpiredRunningRounds(ctx, s.CRDB, now)
	if err != nil {
		zap.S().Errorw("failed to list expired contribution rounds", "error", err)
		return false
	}

	changed := false
	for _, round := range rounds {
		if err := round.Stop(now); err != nil {
			continue
		}
		ok, err := s.CRDB.Save(ctx, round, models.RoundRunning)
		if err != nil {
			zap.S().Errorw("failed to stop contribution round", "round", round.ID, "error", err)
			continue
		}
		if !ok {
			// an admin moved it first
			continue
		}
		if err := s.CRDB.SaveTimer(ctx, round.Timer(now)); err != nil {
			zap.S().Warnw("failed to update contribution timer", "round", round.ID, "error", err)
		}
		zap.S().Infow("stopped expired contribution round", "round", round.ID)
		changed = true
	}
	return changed
}
