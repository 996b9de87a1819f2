package models

import "time"

// User is the subset of an account this service reads. Accounts are owned by the
// authentication layer.
type User struct {
	ID        int64     `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// StreakReminder is a user whose daily streak ends unless they study today
type StreakReminder struct {
	UserID      int64  `db:"user_id"`
	Email       string `db:"email"`
	Name        string `db:"name"`
	DailyStreak int    `db:"daily_streak"`
}
