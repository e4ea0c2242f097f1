package model

import "time"

// User owns accounts, categories and recurring transactions.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex" json:"email"`
	Name           string    `json:"name"`
	APIToken       string    `gorm:"uniqueIndex" json:"-"`
	TelegramChatID *int64    `json:"telegramChatId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
