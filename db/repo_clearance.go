// db/repo_clearance.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"Gin_postgres_redis_clearance_tool/clearance"
	"Gin_postgres_redis_clearance_tool/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func recipientItemsTx(tx *gorm.DB, rtype, rid string) ([]*models.IssuedItem, error) {
	var items []*models.IssuedItem
	err := scopeRecipient(tx.Model(&models.IssuedItem{}), rtype, rid).
		Order("date_issued DESC").
		Find(&items).Error
	return items, err
}

// refreshClearanceTx recomputes the recipient verdict and upserts the cache
// row inside the caller's transaction. force overrides the computation
// (rollback retracts a resolved fact, so the cache drops straight to
// Pending without looking at the other items).
func (r *Repo) refreshClearanceTx(tx *gorm.DB, rtype, rid string, force clearance.RecipientStatus) error {
	status := force
	if status == "" {
		items, err := recipientItemsTx(tx, rtype, rid)
		if err != nil {
			return err
		}
		for _, it := range items {
			if _, err := clearance.ItemConditions(it); errors.Is(err, clearance.ErrMalformedConditionData) {
				log.Printf("clearance: issued item %d has malformed conditions, using keyword fallback", it.ID)
			}
		}
		status = clearance.ComputeStatus(items, time.Now().UTC())
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recipient_type"}, {Name: "recipient_id"}},
		DoUpdates: clause.Assignments(map[string]any{"status": string(status), "last_updated": time.Now().UTC()}),
	}).Create(&models.Clearance{
		RecipientType: rtype,
		RecipientID:   rid,
		Status:        string(status),
		LastUpdated:   time.Now().UTC(),
	}).Error
}

// GetClearanceStatus is the authoritative read: it always recomputes from
// the issued items and opportunistically refreshes the cache row.
func (r *Repo) GetClearanceStatus(ctx context.Context, rtype, rid string) (clearance.RecipientStatus, error) {
	var status clearance.RecipientStatus
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := recipientItemsTx(tx, rtype, rid)
		if err != nil {
			return err
		}
		status = clearance.ComputeStatus(items, time.Now().UTC())
		return r.refreshClearanceTx(tx, rtype, rid, status)
	})
	if err != nil {
		return status, fmt.Errorf("%w: %v", clearance.ErrStoreUnavailable, err)
	}
	return status, nil
}

// ListActionableItems returns the per-role work queue.
// Storekeeper: Pending and NeedsReview items, NeedsReview first (those came
// back from an admin and jump the queue). Escalated items are filtered out —
// they sit with the admin. Admin: Escalated only.
func (r *Repo) ListActionableItems(ctx context.Context, role clearance.Role) ([]models.IssuedItem, error) {
	actionable := clearance.ActionableStatuses(role)
	if len(actionable) == 0 {
		return nil, &clearance.TransitionError{Role: role, Reason: "unknown role"}
	}
	statuses := make([]string, len(actionable))
	for i, s := range actionable {
		statuses[i] = string(s)
	}

	tx := r.DB.WithContext(ctx).Model(&models.IssuedItem{}).Preload("Equipment").
		Where("damage_clearance_status IN ?", statuses)
	switch role {
	case clearance.RoleStorekeeper:
		tx = tx.Order(clause.OrderBy{Expression: clause.Expr{
			SQL:  "CASE damage_clearance_status WHEN ? THEN 0 ELSE 1 END, date_issued DESC",
			Vars: []any{string(clearance.StatusNeedsReview)},
		}})
	default:
		tx = tx.Order("date_issued DESC")
	}

	var items []models.IssuedItem
	if err := tx.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListClearanceAudit returns the full negotiation history for one item,
// oldest first.
func (r *Repo) ListClearanceAudit(ctx context.Context, itemID uint) ([]models.ClearanceAudit, error) {
	var rows []models.ClearanceAudit
	err := r.DB.WithContext(ctx).
		Where("issued_item_id = ?", itemID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// ClearanceReportRow 清退报表行：每个领用人一行
type ClearanceReportRow struct {
	RecipientType string                    `json:"recipientType"`
	RecipientID   string                    `json:"recipientId"`
	RecipientName string                    `json:"recipientName,omitempty"`
	Status        clearance.RecipientStatus `json:"status"`
	ItemCount     int                       `json:"itemCount"`
	Outstanding   int                       `json:"outstanding"`
	Unresolved    int                       `json:"unresolved"`
}

// ClearanceReport recomputes every recipient's verdict (never trusting the
// cache) and refreshes the cache rows as a side effect.
func (r *Repo) ClearanceReport(ctx context.Context) ([]ClearanceReportRow, error) {
	var items []*models.IssuedItem
	if err := r.DB.WithContext(ctx).Order("date_issued DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	type key struct{ rtype, rid string }
	grouped := map[key][]*models.IssuedItem{}
	var order []key
	names := map[key]string{}
	for _, it := range items {
		rtype, rid := it.RecipientKey()
		if rtype == "" {
			continue
		}
		k := key{rtype, rid}
		if _, ok := grouped[k]; !ok {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], it)
		if names[k] == "" {
			if it.StudentName != nil {
				names[k] = *it.StudentName
			} else if it.StaffName != nil {
				names[k] = *it.StaffName
			}
		}
	}

	now := time.Now().UTC()
	rows := make([]ClearanceReportRow, 0, len(order))
	for _, k := range order {
		group := grouped[k]
		row := ClearanceReportRow{
			RecipientType: k.rtype,
			RecipientID:   k.rid,
			RecipientName: names[k],
			Status:        clearance.ComputeStatus(group, now),
			ItemCount:     len(group),
		}
		for _, it := range group {
			if it.Outstanding() {
				row.Outstanding++
				continue
			}
			cs, err := clearance.ItemConditions(it)
			if errors.Is(err, clearance.ErrMalformedConditionData) {
				log.Printf("clearance: issued item %d has malformed conditions, using keyword fallback", it.ID)
			}
			if cs.HasBad() && !clearance.ItemResolved(it, cs) {
				row.Unresolved++
			}
		}
		rows = append(rows, row)

		if err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipient_type"}, {Name: "recipient_id"}},
			DoUpdates: clause.Assignments(map[string]any{"status": string(row.Status), "last_updated": now}),
		}).Create(&models.Clearance{
			RecipientType: k.rtype,
			RecipientID:   k.rid,
			Status:        string(row.Status),
			LastUpdated:   now,
		}).Error; err != nil {
			return nil, err
		}
	}
	return rows, nil
}
