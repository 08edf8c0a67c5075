// db/repo_equipment.go
package db

import (
	"Gin_postgres_redis_clearance_tool/models"
	"context"
	"strings"
)

// Equipment catalogue

func (r *Repo) CreateEquipment(ctx context.Context, eq *models.Equipment) error {
	return r.DB.WithContext(ctx).Create(eq).Error
}

func (r *Repo) FindEquipmentByID(ctx context.Context, id uint) (*models.Equipment, error) {
	var eq models.Equipment
	if err := r.DB.WithContext(ctx).First(&eq, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

type EquipmentQuery struct {
	Q        string // 模糊搜索：name/category/serial
	Category string
	Active   *bool
	Page     int
	Size     int
}

type PagedEquipment struct {
	Total int64              `json:"total"`
	Items []models.Equipment `json:"items"`
}

func (r *Repo) ListEquipment(ctx context.Context, q EquipmentQuery) (*PagedEquipment, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Equipment{})
	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ? OR LOWER(serial_number) LIKE ?", pat, pat, pat)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Active != nil {
		tx = tx.Where("is_active = ?", *q.Active)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Equipment
	if err := tx.
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return &PagedEquipment{Total: total, Items: items}, nil
}

func (r *Repo) UpdateEquipment(ctx context.Context, id uint, fields map[string]any) error {
	// 数量类字段只走 Ledger 的原子调整，这里拒绝直接改
	delete(fields, "quantity")
	delete(fields, "damaged_count")
	delete(fields, "lost_count")
	return r.DB.WithContext(ctx).Model(&models.Equipment{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// SetEquipmentActive 停用而不是删除：已发放的记录仍引用该条目
func (r *Repo) SetEquipmentActive(ctx context.Context, id uint, active bool) error {
	return r.DB.WithContext(ctx).Model(&models.Equipment{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}
