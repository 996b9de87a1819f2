package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"vocabclash/internal/database"
	"vocabclash/internal/gamification"
	"vocabclash/internal/models"
	"vocabclash/internal/repository"
	"vocabclash/internal/validation"
)

// ReminderSender delivers streak reminders
type ReminderSender interface {
	SendStreakReminder(ctx context.Context, toEmail, toName string, streak int) error
}

// ReminderService emails users whose streak is about to lapse
type ReminderService struct {
	db     *database.DB
	sender ReminderSender
}

// NewReminderService creates a new reminder service
func NewReminderService(db *database.DB, sender ReminderSender) *ReminderService {
	return &ReminderService{db: db, sender: sender}
}

// SendStreakReminders reminds every user who studied the day before today
// (YYYY-MM-DD) and has not studied yet today. It returns the number of
// reminders sent; a failed send is logged and skipped.
func (s *ReminderService) SendStreakReminders(ctx context.Context, today string) (int, error) {
	day, err := time.Parse(models.DateLayout, today)
	if err != nil {
		return 0, validation.ValidationError{Field: "today", Message: "must be a YYYY-MM-DD date"}
	}
	yesterday := day.AddDate(0, 0, -1).Format(models.DateLayout)

	candidates, err := repository.NewUserRepository(s.db).ListStreakReminders(ctx, yesterday)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, c := range candidates {
		state := &models.ProgressionState{DailyStreak: c.DailyStreak, LastVisitDate: yesterday}
		if !gamification.StreakAtRisk(state, today) {
			continue
		}
		if err := s.sender.SendStreakReminder(ctx, c.Email, c.Name, c.DailyStreak); err != nil {
			zap.S().Errorw("Failed to send streak reminder", "user_id", c.UserID, "error", err)
			continue
		}
		sent++
	}

	zap.S().Infow("Streak reminders processed", "date", today, "candidates", len(candidates), "sent", sent)
	return sent, nil
}
