// Package sqlstore keeps a transcript archive of sessions and turns. Writes
// are best-effort: the chat path never fails because the archive does.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ChatSession struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID string    `gorm:"type:varchar(26);index;not null" json:"session_id"`
	Provider  string    `gorm:"type:varchar(32);not null" json:"provider"`
	Model     string    `gorm:"type:varchar(64);not null" json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

func (ChatSession) TableName() string { return "chat_sessions" }

type ChatMessage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"type:varchar(26);index;not null" json:"session_id"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Failed    bool      `gorm:"not null;default:false" json:"failed"`
	CreatedAt time.Time `json:"created_at"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

type Archive struct {
	db *gorm.DB
}

// Open connects and migrates the archive schema. driver is "sqlite" or
// "mysql"; the default sqlite DSN is in-memory, so nothing outlives the
// process unless a file or server DSN is configured.
func Open(driver, dsn string) (*Archive, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("sqlstore: unknown driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&ChatSession{}, &ChatMessage{}); err != nil {
		return nil, err
	}
	return &Archive{db: db}, nil
}

func NewArchive(db *gorm.DB) *Archive { return &Archive{db: db} }

func (a *Archive) RecordSession(ctx context.Context, sessionID, provider, model string) error {
	return a.db.WithContext(ctx).Create(&ChatSession{
		SessionID: sessionID,
		Provider:  provider,
		Model:     model,
	}).Error
}

// RecordTurn stores the user message and the assistant reply of one completed
// chat call, in that order.
func (a *Archive) RecordTurn(ctx context.Context, sessionID, userText, reply string, failed bool) error {
	msgs := []ChatMessage{
		{SessionID: sessionID, Role: "user", Content: userText},
		{SessionID: sessionID, Role: "assistant", Content: reply, Failed: failed},
	}
	return a.db.WithContext(ctx).Create(&msgs).Error
}

// ListMessages returns the archived transcript for a session in id order.
func (a *Archive) ListMessages(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var msgs []ChatMessage
	if err := a.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}
