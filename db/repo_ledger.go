// db/repo_ledger.go
package db

import (
	"errors"

	"Gin_postgres_redis_clearance_tool/models"

	"gorm.io/gorm"
)

// Inventory ledger: every equipment counter mutation goes through these
// atomic SQL updates, never a read-modify-write at the caller. All of them
// run inside the caller's transaction so counters and loan state move
// together or not at all.

var ErrInsufficientStock = errors.New("not enough equipment on shelf")

// ledgerIssue takes qty units off the shelf for a new issue.
func ledgerIssue(tx *gorm.DB, equipmentID uint, qty int) error {
	res := tx.Model(&models.Equipment{}).
		Where("id = ? AND quantity >= ?", equipmentID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// ledgerReturn books a return: good units go back on the shelf, damaged and
// lost units move into their counters.
func ledgerReturn(tx *gorm.DB, equipmentID uint, good, damaged, lost int) error {
	if good == 0 && damaged == 0 && lost == 0 {
		return nil
	}
	return tx.Model(&models.Equipment{}).
		Where("id = ?", equipmentID).
		Updates(map[string]any{
			"quantity":      gorm.Expr("quantity + ?", good),
			"damaged_count": gorm.Expr("damaged_count + ?", damaged),
			"lost_count":    gorm.Expr("lost_count + ?", lost),
		}).Error
}

// ledgerReplacement applies a Replaced resolution: each affected unit goes
// back into the pool and comes off its damaged/lost counter, floored at 0.
// Repaired and Waived change no counters, so they never come through here.
func ledgerReplacement(tx *gorm.DB, equipmentID uint, damaged, lost int) error {
	if damaged == 0 && lost == 0 {
		return nil
	}
	return tx.Model(&models.Equipment{}).
		Where("id = ?", equipmentID).
		Updates(map[string]any{
			"quantity":      gorm.Expr("quantity + ?", damaged+lost),
			"damaged_count": gorm.Expr("GREATEST(damaged_count - ?, 0)", damaged),
			"lost_count":    gorm.Expr("GREATEST(lost_count - ?, 0)", lost),
		}).Error
}
