package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
)

// CeremonyStore keeps in-flight WebAuthn ceremony state (the server-side
// half of a registration or login challenge) in redis. Entries are one-shot:
// the finish handler loads and drops them, and abandoned ceremonies expire
// on their own.
type CeremonyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCeremonyStore(rdb *redis.Client, ttl time.Duration) *CeremonyStore {
	return &CeremonyStore{rdb: rdb, ttl: ttl}
}

// InviteSubject scopes a registration ceremony to an invite token: at first
// registration the account may not exist yet, so the token stands in for the
// username.
func InviteSubject(token string) string { return "invite:" + token }

func ceremonyKey(kind, subject string) string {
	return fmt.Sprintf("ses:ceremony:%s:%s", kind, subject)
}

func (s *CeremonyStore) put(ctx context.Context, kind, subject string, sd *webauthn.SessionData) error {
	b, err := json.Marshal(sd)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, ceremonyKey(kind, subject), b, s.ttl).Err()
}

func (s *CeremonyStore) get(ctx context.Context, kind, subject string) (*webauthn.SessionData, error) {
	b, err := s.rdb.Get(ctx, ceremonyKey(kind, subject)).Bytes()
	if err != nil {
		return nil, err
	}
	var sd webauthn.SessionData
	if err := json.Unmarshal(b, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

func (s *CeremonyStore) drop(ctx context.Context, kind, subject string) {
	_ = s.rdb.Del(ctx, ceremonyKey(kind, subject)).Err()
}

// 注册挑战：subject 是用户名，或 InviteSubject(token)

func (s *CeremonyStore) SaveRegistration(ctx context.Context, subject string, sd *webauthn.SessionData) error {
	return s.put(ctx, "reg", subject, sd)
}

func (s *CeremonyStore) LoadRegistration(ctx context.Context, subject string) (*webauthn.SessionData, error) {
	return s.get(ctx, "reg", subject)
}

func (s *CeremonyStore) DropRegistration(ctx context.Context, subject string) {
	s.drop(ctx, "reg", subject)
}

// 登录挑战：subject 是 BeginLogin 发的一次性 sessionId

func (s *CeremonyStore) SaveLogin(ctx context.Context, sid string, sd *webauthn.SessionData) error {
	return s.put(ctx, "login", sid, sd)
}

func (s *CeremonyStore) LoadLogin(ctx context.Context, sid string) (*webauthn.SessionData, error) {
	return s.get(ctx, "login", sid)
}

func (s *CeremonyStore) DropLogin(ctx context.Context, sid string) {
	s.drop(ctx, "login", sid)
}
