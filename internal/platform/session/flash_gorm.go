package session

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// FlashModel is the GORM model for the flash_messages table.
type FlashModel struct {
	ID        uint      `gorm:"primaryKey"`
	SessionID string    `gorm:"size:36;index;not null"`
	Category  string    `gorm:"size:20;not null"`
	Message   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (FlashModel) TableName() string {
	return "flash_messages"
}

// FlashGorm implements FlashStore on the application database.
// It is the fallback when Redis is unavailable.
type FlashGorm struct {
	db *gorm.DB
}

var _ FlashStore = (*FlashGorm)(nil)

// NewFlashGorm creates a new FlashGorm instance.
func NewFlashGorm(db *gorm.DB) *FlashGorm {
	return &FlashGorm{db: db}
}

// Add persists a flash for the session.
func (r *FlashGorm) Add(ctx context.Context, sessionID string, f Flash) error {
	return r.db.WithContext(ctx).Create(&FlashModel{
		SessionID: sessionID,
		Category:  f.Category,
		Message:   f.Message,
	}).Error
}

// Pop reads and deletes the session's flashes in one transaction.
func (r *FlashGorm) Pop(ctx context.Context, sessionID string) ([]Flash, error) {
	var flashes []Flash
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var models []FlashModel
		if err := tx.Where("session_id = ?", sessionID).
			Order("id ASC").
			Find(&models).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}

		ids := make([]uint, len(models))
		for i, m := range models {
			ids[i] = m.ID
			flashes = append(flashes, Flash{Category: m.Category, Message: m.Message})
		}
		return tx.Where("id IN ?", ids).Delete(&FlashModel{}).Error
	})
	if err != nil {
		return nil, err
	}
	return flashes, nil
}

// DeleteOlderThan removes unread flashes created before cutoff and returns the number removed.
func (r *FlashGorm) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&FlashModel{})
	return result.RowsAffected, result.Error
}

// Sweep deletes flashes older than ttl every interval until ctx is done.
func (r *FlashGorm) Sweep(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.DeleteOlderThan(ctx, time.Now().Add(-ttl))
			if err != nil {
				slog.Warn("flash sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("flash sweep", "deleted", n)
			}
		}
	}
}
