// db/repo_transition.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"Gin_postgres_redis_clearance_tool/clearance"
	"Gin_postgres_redis_clearance_tool/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransitionInput struct {
	ItemID     uint
	Actor      clearance.Actor
	Action     clearance.Action
	Resolution clearance.Resolution
	Notes      string
	// ExpectedVersion carries the version the caller last saw. Nil means
	// "whatever is current" (the row lock alone serializes the write).
	ExpectedVersion *int
}

// TransitionClearance drives one step of the damage/loss workflow. One
// transaction covers the whole step: status change, audit row, inventory
// adjustment, clearance-cache refresh and notification. If any piece fails
// nothing is committed.
func (r *Repo) TransitionClearance(ctx context.Context, in TransitionInput) (*models.IssuedItem, error) {
	var item models.IssuedItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁住发放记录
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Equipment").
			First(&item, "id = ?", in.ItemID).Error; err != nil {
			return err
		}
		expected := item.Version
		if in.ExpectedVersion != nil {
			expected = *in.ExpectedVersion
		}

		// 2) 前置校验：没有坏件条件的记录不进状态机
		cs, perr := clearance.ItemConditions(&item)
		if errors.Is(perr, clearance.ErrMalformedConditionData) {
			log.Printf("clearance: issued item %d has malformed conditions, using keyword fallback", item.ID)
		}
		switch in.Action {
		case clearance.ActionResolve, clearance.ActionEscalate, clearance.ActionClear:
			if !cs.HasBad() {
				return fmt.Errorf("issued item %d: %w", item.ID, clearance.ErrNoDamageRecorded)
			}
		}

		// 3) 状态机裁决
		current := clearance.Status(item.DamageClearanceStatus)
		next, effects, err := clearance.Transition(current, in.Actor, in.Action, in.Resolution)
		if err != nil {
			return err
		}

		// 4) 审计：结构化一条 + 追加到自由文本备注
		round, err := nextRound(tx, item.ID, effects.ReopensRound)
		if err != nil {
			return err
		}
		audit := &models.ClearanceAudit{
			IssuedItemID: item.ID,
			ActorRole:    string(in.Actor.Role),
			ActorID:      in.Actor.Identifier,
			Action:       string(in.Action),
			FromStatus:   string(current),
			ToStatus:     string(next),
			Reason:       in.Notes,
			Round:        round,
		}
		if err := tx.Create(audit).Error; err != nil {
			return err
		}
		notes := appendNote(item.DamageClearanceNotes, effects.NoteTag, in.Notes)

		// 5) 乐观锁写回：version 不匹配说明有人抢先改了这条记录
		res := tx.Model(&models.IssuedItem{}).
			Where("id = ? AND version = ?", item.ID, expected).
			Updates(map[string]any{
				"damage_clearance_status": string(next),
				"damage_clearance_notes":  notes,
				"version":                 expected + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("issued item %d: %w", item.ID, clearance.ErrConcurrentModification)
		}

		// 6) 库存调整只在 Replaced 时发生，由 Ledger 执行
		if effects.AdjustInventory {
			if err := ledgerReplacement(tx, item.EquipmentID, cs.DamagedUnits(), cs.LostUnits()); err != nil {
				return err
			}
		}

		// 7) 刷新领用人清退缓存；回滚强制 Pending
		rtype, rid := item.RecipientKey()
		if rtype != "" {
			force := clearance.RecipientStatus("")
			if effects.ResetRecipientCache {
				force = clearance.RecipientPending
			}
			if err := r.refreshClearanceTx(tx, rtype, rid, force); err != nil {
				return err
			}
		}

		// 8) 通知另一方
		if effects.Notify != "" {
			if err := createNotificationTx(tx, effects.Notify, transitionMessage(&item, in, next), itemURL(item.ID)); err != nil {
				return err
			}
		}

		return tx.Preload("Equipment").First(&item, "id = ?", item.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// nextRound reads the latest negotiation round for the item; the bookkeeping
// itself lives in clearance.NextRound.
func nextRound(tx *gorm.DB, itemID uint, reopens bool) (int, error) {
	var last int
	err := tx.Model(&models.ClearanceAudit{}).
		Where("issued_item_id = ?", itemID).
		Select("COALESCE(MAX(round), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, err
	}
	return clearance.NextRound(last, reopens), nil
}

// appendNote keeps the notes blob append-only: the full negotiation history
// stays readable.
func appendNote(existing, tag, note string) string {
	entry := strings.TrimSpace(tag + " " + strings.TrimSpace(note))
	if entry == "" {
		return existing
	}
	if existing == "" {
		return entry
	}
	return existing + "\n" + entry
}

func transitionMessage(item *models.IssuedItem, in TransitionInput, next clearance.Status) string {
	name := ""
	if item.Equipment != nil {
		name = item.Equipment.Name
	}
	_, rid := item.RecipientKey()
	switch in.Action {
	case clearance.ActionEscalate:
		return fmt.Sprintf("Issued item #%d (%s, recipient %s) escalated for review: %s", item.ID, name, rid, in.Notes)
	case clearance.ActionReject:
		return fmt.Sprintf("Issued item #%d (%s, recipient %s) rejected by admin, back in your queue: %s", item.ID, name, rid, in.Notes)
	case clearance.ActionRollback:
		return fmt.Sprintf("Issued item #%d (%s, recipient %s) resolution rolled back, needs review: %s", item.ID, name, rid, in.Notes)
	}
	return fmt.Sprintf("Issued item #%d (%s) moved to %s", item.ID, name, next)
}

func itemURL(id uint) string { return fmt.Sprintf("/clearance/items/%d", id) }
