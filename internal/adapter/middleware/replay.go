package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"civic-backoffice/internal/domain/actor"
)

const replayKeyPrefix = "idemp:civic"

// replayEntry is what the store keeps for one (route, actor, request id).
// While InProgress is set only the body digest is meaningful.
type replayEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e replayEntry) replayable() bool { return !e.InProgress && e.Code != 0 && len(e.Body) > 0 }

// replayStore wraps the redis calls so the middleware reads as a state machine.
type replayStore struct{ rdb *redis.Client }

// claim takes the in-progress lock. false means another request holds the key.
func (s replayStore) claim(ctx context.Context, key string, e replayEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func (s replayStore) load(ctx context.Context, key string) (replayEntry, error) {
	var e replayEntry
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return replayEntry{}, err
	}
	return e, nil
}

// finish replaces the lock with the recorded response for ttl.
func (s replayStore) finish(ctx context.Context, key string, e replayEntry, ttl time.Duration) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, ttl).Err()
}

// replayKey scopes a request id to the route and the caller, so two callers
// reusing an id never see each other's responses. requestID must already be
// normalized.
func replayKey(method, route string, who actor.Actor, requestID string) string {
	return strings.Join([]string{
		replayKeyPrefix,
		strings.ToLower(method),
		route,
		actor.OrSystem(who).Key(),
		requestID,
	}, ":")
}

var (
	uuidPattern  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	hex32Pattern = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// normalizeRequestID folds case so "ABC..." and "abc..." claim the same key.
func normalizeRequestID(raw string) (string, bool) {
	id := strings.ToLower(strings.TrimSpace(raw))
	if uuidPattern.MatchString(id) || hex32Pattern.MatchString(id) {
		return id, true
	}
	return "", false
}

// epochMillisFloor separates epoch milliseconds from epoch seconds.
const epochMillisFloor = 1e12

var requestAtLayouts = []string{time.RFC3339Nano, time.RFC3339}

// parseRequestAt accepts epoch seconds, epoch milliseconds or RFC3339 with an
// explicit zone. Local times without a zone are refused.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > epochMillisFloor {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	for _, layout := range requestAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

func bodyDigest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

var clock = func() time.Time { return time.Now().UTC() }
