// app/bootstrap.go
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"Gin_postgres_redis_clearance_tool/db"
	"Gin_postgres_redis_clearance_tool/models"
)

// BootstrapFirstAdmin creates a one-time admin invite when the system has no
// admin yet. Storekeeper accounts are invited by that admin later.
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo) {
	if cfg.BootstrapEmail == "" {
		return
	}
	n, err := repo.CountAdmins(ctx)
	if err != nil {
		log.Printf("bootstrap: count admins: %v", err)
		return
	}
	if n > 0 {
		return
	}

	token, err := newInviteToken()
	if err != nil {
		log.Printf("bootstrap: token generation failed: %v", err)
		return
	}

	if _, err := repo.CreateInvite(ctx, cfg.BootstrapEmail, token, models.RoleAdmin, time.Now().Add(24*time.Hour), "bootstrap"); err != nil {
		log.Printf("bootstrap invite failed: %v", err)
		return
	}

	link := fmt.Sprintf("%s/login?inviteToken=%s", cfg.WebOrigin, token)
	log.Printf("[BOOTSTRAP] No admin found, created an admin invite for %s", cfg.BootstrapEmail)
	log.Printf("[BOOTSTRAP] Open this URL to register the first admin: %s", link)
}

// newInviteToken mints a one-time invite token. The first admin invite hangs
// off this token, so a bad random read aborts instead of minting a weak one.
func newInviteToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
