// db/repo_notifications.go
package db

import (
	"context"
	"errors"

	"Gin_postgres_redis_clearance_tool/clearance"
	"Gin_postgres_redis_clearance_tool/models"

	"gorm.io/gorm"
)

// createNotificationTx enqueues an alert inside the caller's transaction so
// the notification commits (or rolls back) with the transition that caused
// it. Delivery is the UI polling the rows; at-least-once is fine.
func createNotificationTx(tx *gorm.DB, role clearance.Role, message, url string) error {
	return tx.Create(&models.Notification{
		RecipientRole: string(role),
		Message:       message,
		URL:           url,
	}).Error
}

func (r *Repo) ListNotifications(ctx context.Context, role string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	tx := r.DB.WithContext(ctx).Where("recipient_role = ?", role)
	if unreadOnly {
		tx = tx.Where("is_read = FALSE")
	}
	var ns []models.Notification
	err := tx.Order("created_at DESC").Limit(limit).Find(&ns).Error
	return ns, err
}

func (r *Repo) MarkNotificationRead(ctx context.Context, id uint, role string) error {
	res := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_role = ?", id, role).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("notification not found")
	}
	return nil
}

func (r *Repo) MarkAllNotificationsRead(ctx context.Context, role string) error {
	return r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_role = ? AND is_read = FALSE", role).
		Update("is_read", true).Error
}
