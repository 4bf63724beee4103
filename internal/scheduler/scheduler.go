package scheduler

import (
	"context"
	"fmt"
	"time"

	"flashdeck/internal/domain"
	"flashdeck/internal/service"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(chatID int64, streak domain.StreakRecord, alive bool) error
}

// Scheduler sends a daily reminder when nothing was studied yet that day
type Scheduler struct {
	scheduler *gocron.Scheduler
	streaks   *service.StreakService
	notifier  Notifier
	chatID    int64
	at        string
	logger    *zap.Logger
}

// New creates a new scheduler instance. at is the "15:04" time of day in loc.
func New(
	loc *time.Location,
	streaks *service.StreakService,
	notifier Notifier,
	chatID int64,
	at string,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		streaks:   streaks,
		notifier:  notifier,
		chatID:    chatID,
		at:        at,
		logger:    logger,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At(s.at).Do(s.checkAndRemind); err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()

	s.logger.Info("Reminder scheduled",
		zap.String("at", s.at),
		zap.Int64("chat_id", s.chatID),
	)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndRemind sends the reminder unless the global streak was touched today
func (s *Scheduler) checkAndRemind() {
	ctx := context.Background()

	alive, doneToday := s.streaks.GlobalActive(ctx)
	if doneToday {
		s.logger.Debug("Already studied today, skipping reminder")
		return
	}

	streak := s.streaks.Global(ctx)
	if err := s.notifier.SendReminder(s.chatID, streak, alive); err != nil {
		s.logger.Error("Failed to send reminder",
			zap.Int64("chat_id", s.chatID),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Reminder sent",
		zap.Int64("chat_id", s.chatID),
		zap.Int("streak", streak.Streak),
	)
}
