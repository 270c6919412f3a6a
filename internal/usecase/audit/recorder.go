package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"civic-backoffice/internal/domain/actor"
	auditDomain "civic-backoffice/internal/domain/audit"
	"civic-backoffice/internal/infrastructure/metrics"
)

const (
	defaultTimeout = 3 * time.Second
	redacted       = "[REDACTED]"
)

// keys whose values never reach the audit table, matched case-insensitively
// as substrings of the key
var sensitiveKeys = []string{
	"password", "passwd", "secret", "token", "authorization",
	"credential", "api_key", "apikey", "cookie",
}

var _ auditDomain.Sink = (*Recorder)(nil)

// Recorder persists audit events on a best-effort basis. A failed write is
// logged and counted but never reaches the caller.
type Recorder struct {
	repo    auditDomain.Repository
	log     *logrus.Entry
	metrics *metrics.Metrics
	timeout time.Duration
	now     func() time.Time
}

func NewRecorder(repo auditDomain.Repository, log *logrus.Logger, m *metrics.Metrics, timeout time.Duration) *Recorder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Recorder{
		repo:    repo,
		log:     log.WithField("component", "audit"),
		metrics: m,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *Recorder) Record(ctx context.Context, e auditDomain.Event) {
	if ctx == nil {
		ctx = context.Background()
	}
	fields := logrus.Fields{
		"action":      string(e.Action),
		"entity_kind": string(e.EntityKind),
		"entity_id":   e.EntityID,
	}
	defer func() {
		if p := recover(); p != nil {
			r.metrics.AuditWrite("failed")
			r.log.WithFields(fields).Errorf("audit write panicked: %v", p)
		}
	}()

	// reading the audit log is not itself audited
	if e.EntityKind == auditDomain.EntityAuditLog {
		r.metrics.AuditWrite("skipped")
		return
	}
	if !e.Action.Valid() || !e.EntityKind.Valid() {
		r.metrics.AuditWrite("invalid")
		r.log.WithFields(fields).Error("audit event rejected: unknown action or entity kind")
		return
	}

	entry, err := r.build(ctx, e)
	if err != nil {
		r.metrics.AuditWrite("failed")
		r.log.WithFields(fields).WithError(err).Error("audit event could not be encoded")
		return
	}

	// the caller's request may already be finished; the write gets its own deadline
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	if err := r.repo.Create(wctx, entry); err != nil {
		r.metrics.AuditWrite("failed")
		r.log.WithFields(fields).WithError(err).Warn("failed to persist audit entry")
		return
	}
	r.metrics.AuditWrite("written")
}

func (r *Recorder) build(ctx context.Context, e auditDomain.Event) (*auditDomain.Entry, error) {
	who := actor.Resolve(e.Actor)

	before, err := encodeState(e.Before)
	if err != nil {
		return nil, fmt.Errorf("before state: %w", err)
	}
	after, err := encodeState(e.After)
	if err != nil {
		return nil, fmt.Errorf("after state: %w", err)
	}

	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		desc = strings.TrimSpace(fmt.Sprintf("%s %s %s %s", who.ActorName, e.Action, e.EntityKind, e.EntityID))
	}

	entry := &auditDomain.Entry{
		EntryID:     uuid.NewString(),
		ActorID:     who.ActorID,
		ActorRole:   who.ActorRole,
		Action:      e.Action,
		EntityKind:  e.EntityKind,
		EntityID:    optional(e.EntityID),
		BeforeState: before,
		AfterState:  after,
		Description: desc,
		CreatedAt:   r.now(),
	}
	if len(e.Metadata) > 0 {
		entry.Metadata = datatypes.JSONMap(Redact(e.Metadata))
	}
	p := auditDomain.ProvenanceFrom(ctx)
	entry.IPAddress = optional(p.IPAddress)
	entry.UserAgent = optional(truncate(p.UserAgent, 255))
	return entry, nil
}

func encodeState(m map[string]any) (datatypes.JSON, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(Redact(m))
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// Redact returns a deep copy of m with sensitive values replaced.
func Redact(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if isSensitive(k) {
			out[k] = redacted
			continue
		}
		out[k] = redactValue(v)
	}
	return out
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Redact(t)
	case datatypes.JSONMap:
		return Redact(t)
	case []any:
		cp := make([]any, len(t))
		for i, x := range t {
			cp[i] = redactValue(x)
		}
		return cp
	default:
		return v
	}
}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
