// db/repo_issue.go
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Gin_postgres_redis_clearance_tool/clearance"
	"Gin_postgres_redis_clearance_tool/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEquipmentInactive        = errors.New("equipment is disabled")
	ErrAlreadyReturned          = errors.New("item already fully returned")
	ErrConditionAlreadyRecorded = errors.New("condition already recorded")
)

type IssueInput struct {
	RecipientType  string // models.RecipientStudent / models.RecipientStaff
	RecipientID    string
	RecipientName  string
	RecipientEmail string
	RecipientPhone string
	EquipmentID    uint
	Quantity       int
	Serials        []string // optional; when present must match Quantity
	ExpectedReturn *time.Time
	IssuedBy       string
}

// IssueEquipment 发放：原子操作 = 锁住 equipment → 扣减库存 → 新建发放记录
func (r *Repo) IssueEquipment(ctx context.Context, in IssueInput) (*models.IssuedItem, error) {
	if in.Quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	if len(in.Serials) > 0 && len(in.Serials) != in.Quantity {
		return nil, fmt.Errorf("expected %d serials, got %d", in.Quantity, len(in.Serials))
	}
	if in.RecipientID == "" {
		return nil, errors.New("missing recipient identifier")
	}

	var item *models.IssuedItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁住该设备
		var eq models.Equipment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&eq, "id = ?", in.EquipmentID).Error; err != nil {
			return err
		}
		if !eq.IsActive {
			return ErrEquipmentInactive
		}

		// 2) 扣减库存（WHERE quantity >= ? 防并发超发）
		if err := ledgerIssue(tx, eq.ID, in.Quantity); err != nil {
			return err
		}

		// 3) 新建发放记录
		now := time.Now().UTC()
		it := &models.IssuedItem{
			EquipmentID:    eq.ID,
			Quantity:       in.Quantity,
			Status:         models.IssueStatusIssued,
			DateIssued:     now,
			ExpectedReturn: in.ExpectedReturn,
			IssuedBy:       in.IssuedBy,
		}
		switch in.RecipientType {
		case models.RecipientStudent:
			it.StudentID = &in.RecipientID
			if in.RecipientName != "" {
				it.StudentName = &in.RecipientName
			}
			if in.RecipientEmail != "" {
				it.StudentEmail = &in.RecipientEmail
			}
			if in.RecipientPhone != "" {
				it.StudentPhone = &in.RecipientPhone
			}
		case models.RecipientStaff:
			it.StaffPayroll = &in.RecipientID
			if in.RecipientName != "" {
				it.StaffName = &in.RecipientName
			}
			if in.RecipientEmail != "" {
				it.StaffEmail = &in.RecipientEmail
			}
		default:
			return fmt.Errorf("unknown recipient type %q", in.RecipientType)
		}
		if len(in.Serials) > 0 {
			b, err := json.Marshal(in.Serials)
			if err != nil {
				return err
			}
			it.SerialNumbers = string(b)
		}
		if err := tx.Create(it).Error; err != nil {
			return err
		}

		// 4) 刷新该人的清退缓存（新增未归还项 → Pending）
		if err := r.refreshClearanceTx(tx, in.RecipientType, in.RecipientID, ""); err != nil {
			return err
		}
		item = it
		return nil
	})
	return item, err
}

type ReturnInput struct {
	ItemID uint
	// Conditions maps serial -> Good/Damaged/Lost. Loans that are not
	// serial-tracked use the single clearance.AggregateKey entry.
	Conditions map[string]string
	ReturnedBy string
}

// ReturnEquipment 归还：原子操作 = 锁住发放记录 → 合并条件 → 调库存 → 刷缓存。
// 部分归还合法：只要还有未录条件的序列号，记录保持 PartialReturn。
// 首次出现 Damaged/Lost 条件时，该记录进入清退状态机（Pending）。
func (r *Repo) ReturnEquipment(ctx context.Context, in ReturnInput) (*models.IssuedItem, error) {
	if len(in.Conditions) == 0 {
		return nil, errors.New("no return conditions given")
	}

	// 先归一化、校验输入条件
	normalized := make(map[string]clearance.Condition, len(in.Conditions))
	for serial, raw := range in.Conditions {
		c, ok := clearance.NormalizeCondition(raw)
		if !ok {
			return nil, fmt.Errorf("invalid condition %q for serial %q", raw, serial)
		}
		normalized[serial] = c
	}

	var item models.IssuedItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁住发放记录
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&item, "id = ?", in.ItemID).Error; err != nil {
			return err
		}
		if item.Status == models.IssueStatusReturned {
			return ErrAlreadyReturned
		}

		// 2) 合并进已有条件（部分归还会多次经过这里）
		existing := map[string]string{}
		if item.ReturnConditions != "" {
			// 合并失败不致命：旧数据交给 Aggregator 的降级扫描
			_ = json.Unmarshal([]byte(item.ReturnConditions), &existing)
		}
		merged, good, damaged, lost, err := mergeReturnConditions(existing, normalized, item.Quantity)
		if err != nil {
			return err
		}
		b, err := json.Marshal(merged)
		if err != nil {
			return err
		}

		// 3) 全部到齐才算 Returned
		now := time.Now().UTC()
		serials := item.Serials()
		complete := true
		if _, ok := normalized[clearance.AggregateKey]; !ok && len(serials) > 0 {
			recorded := 0
			for _, s := range serials {
				if _, ok := merged[s]; ok {
					recorded++
				}
			}
			complete = recorded >= len(serials)
		}

		updates := map[string]any{
			"return_conditions": string(b),
		}
		if complete {
			updates["status"] = models.IssueStatusReturned
			updates["date_returned"] = now
		} else {
			updates["status"] = models.IssueStatusPartialReturn
		}

		// 首个坏条件把记录推进状态机
		if (damaged > 0 || lost > 0) && item.DamageClearanceStatus == "" {
			updates["damage_clearance_status"] = string(clearance.StatusPending)
		}

		if err := tx.Model(&models.IssuedItem{}).
			Where("id = ?", item.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		// 4) 库存：好件回架，坏件进计数
		if err := ledgerReturn(tx, item.EquipmentID, good, damaged, lost); err != nil {
			return err
		}

		// 5) 刷新清退缓存
		rtype, rid := item.RecipientKey()
		if rtype != "" {
			if err := r.refreshClearanceTx(tx, rtype, rid, ""); err != nil {
				return err
			}
		}

		return tx.First(&item, "id = ?", item.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repo) FindIssuedItemByID(ctx context.Context, id uint) (*models.IssuedItem, error) {
	var it models.IssuedItem
	if err := r.DB.WithContext(ctx).Preload("Equipment").First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

type IssuedItemsQuery struct {
	RecipientType string
	RecipientID   string
	Status        string
	EquipmentID   uint
	// Overdue narrows to outstanding items past their expected return.
	Overdue bool
	Page    int
	Size    int
}

type PagedIssuedItems struct {
	Total int64               `json:"total"`
	Items []models.IssuedItem `json:"items"`
}

func (r *Repo) ListIssuedItems(ctx context.Context, q IssuedItemsQuery) (*PagedIssuedItems, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.IssuedItem{})
	tx = scopeRecipient(tx, q.RecipientType, q.RecipientID)
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.EquipmentID != 0 {
		tx = tx.Where("equipment_id = ?", q.EquipmentID)
	}
	if q.Overdue {
		tx = tx.Where("status <> ? AND expected_return IS NOT NULL AND expected_return < ?",
			models.IssueStatusReturned, time.Now().UTC())
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.IssuedItem
	if err := tx.Preload("Equipment").
		Order("date_issued DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return &PagedIssuedItems{Total: total, Items: items}, nil
}

// mergeReturnConditions folds newly recorded conditions into the stored
// payload and tallies the unit counts for the ledger. A serial that already
// carries a condition is rejected: its ledger adjustment already happened, so
// recording it again would mutate the counters twice for one physical unit.
func mergeReturnConditions(existing map[string]string, incoming map[string]clearance.Condition, quantity int) (map[string]string, int, int, int, error) {
	merged := make(map[string]string, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}
	good, damaged, lost := 0, 0, 0
	for serial, c := range incoming {
		if _, dup := merged[serial]; dup {
			return nil, 0, 0, 0, fmt.Errorf("serial %q: %w", serial, ErrConditionAlreadyRecorded)
		}
		weight := 1
		if serial == clearance.AggregateKey {
			weight = quantity
		}
		switch c {
		case clearance.CondGood:
			good += weight
		case clearance.CondDamaged:
			damaged += weight
		case clearance.CondLost:
			lost += weight
		}
		merged[serial] = string(c)
	}
	return merged, good, damaged, lost, nil
}

func scopeRecipient(tx *gorm.DB, rtype, rid string) *gorm.DB {
	switch rtype {
	case models.RecipientStudent:
		return tx.Where("student_id = ?", rid)
	case models.RecipientStaff:
		return tx.Where("staff_payroll = ?", rid)
	}
	if rid != "" {
		return tx.Where("student_id = ? OR staff_payroll = ?", rid, rid)
	}
	return tx
}
