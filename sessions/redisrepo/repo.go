package redisrepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lintangjaya/go-storefront/sessions"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

var _ sessions.Repo = (*SessionRepo)(nil)

// SessionRepo stores sessions as JSON values in Redis. The key TTL tracks the
// session expiry, so Redis evicts lapsed sessions on its own.
type SessionRepo struct {
	client  *redis.Client
	nowTime func() time.Time
}

// Option defines a function type to modify the SessionRepo instance.
type Option func(*SessionRepo)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(r *SessionRepo) {
		r.nowTime = nowFunc
	}
}

func New(client *redis.Client, options ...Option) *SessionRepo {
	r := &SessionRepo{
		client:  client,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *SessionRepo) Upsert(ctx context.Context, session sessions.Session) error {
	if session.ID == "" {
		return errors.New("[SessionRepo.Upsert] sessionID is required")
	}

	ttl := session.ExpiresAt.Sub(r.nowTime())
	if ttl <= 0 {
		// Already lapsed, storing it would only resurrect a dead session.
		return r.Delete(ctx, session.ID)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "[SessionRepo.Upsert] json.Marshal")
	}

	if err := r.client.Set(ctx, keyPrefix+session.ID, payload, ttl).Err(); err != nil {
		return errors.Wrap(err, "[SessionRepo.Upsert] client.Set")
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, sessionID string) (sessions.Session, error) {
	if sessionID == "" {
		return sessions.Session{}, errors.New("[SessionRepo.Get] sessionID is required")
	}

	payload, err := r.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return sessions.Session{}, sessions.ErrNotFound
		}
		return sessions.Session{}, errors.Wrap(err, "[SessionRepo.Get] client.Get")
	}

	var session sessions.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return sessions.Session{}, errors.Wrap(err, "[SessionRepo.Get] json.Unmarshal")
	}
	return session, nil
}

func (r *SessionRepo) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return errors.New("[SessionRepo.Delete] sessionID is required")
	}

	if err := r.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return errors.Wrap(err, "[SessionRepo.Delete] client.Del")
	}
	return nil
}
