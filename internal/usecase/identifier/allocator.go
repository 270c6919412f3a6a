package identifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"civic-backoffice/internal/domain/uow"
	"civic-backoffice/internal/domain/ward"
	"civic-backoffice/internal/infrastructure/metrics"
)

const (
	DefaultPrefix = "PRP"
	DefaultWidth  = 4
)

// Allocation is one issued property code.
type Allocation struct {
	Ward     ward.Ward
	Sequence int64
	Code     string
}

// Allocator issues property codes of the form <prefix>-<ward>-<tag>-<seq>.
// Sequences are per ward and come from the counter row, so Allocate must run
// inside the caller's transaction: a rollback releases the number.
type Allocator struct {
	prefix  string
	width   int
	metrics *metrics.Metrics
}

func NewAllocator(prefix string, width int, m *metrics.Metrics) *Allocator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if width < 1 {
		width = DefaultWidth
	}
	return &Allocator{prefix: prefix, width: width, metrics: m}
}

// Allocate resolves wardCode and takes the next sequence for it. An unknown
// or inactive ward returns ward.ErrUnknownScope before any counter is touched.
func (a *Allocator) Allocate(ctx context.Context, r uow.Repos, wardCode, tag string) (*Allocation, error) {
	w, err := r.Wards.GetByCode(ctx, wardCode)
	if err != nil {
		return nil, err
	}
	seq, err := r.Counters.Next(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("next sequence for ward %s: %w", w.Code, err)
	}
	a.metrics.Allocation()
	return &Allocation{Ward: *w, Sequence: seq, Code: a.Compose(w.Code, tag, seq)}, nil
}

// Compose formats a code. Sequences wider than the configured width are
// written in full.
func (a *Allocator) Compose(wardCode, tag string, seq int64) string {
	return fmt.Sprintf("%s-%s-%s-%0*d", a.prefix, wardCode, tag, a.width, seq)
}

// Parse splits a code back into its parts. Ward codes may themselves contain
// '-', so the tag and sequence are taken from the right.
func (a *Allocator) Parse(code string) (wardCode, tag string, seq int64, err error) {
	rest, ok := strings.CutPrefix(code, a.prefix+"-")
	if !ok {
		return "", "", 0, fmt.Errorf("code %q: missing prefix %s", code, a.prefix)
	}
	i := strings.LastIndex(rest, "-")
	if i <= 0 {
		return "", "", 0, fmt.Errorf("code %q: missing sequence", code)
	}
	seq, err = strconv.ParseInt(rest[i+1:], 10, 64)
	if err != nil || seq < 1 {
		return "", "", 0, fmt.Errorf("code %q: bad sequence", code)
	}
	rest = rest[:i]
	j := strings.LastIndex(rest, "-")
	if j <= 0 || j == len(rest)-1 {
		return "", "", 0, fmt.Errorf("code %q: missing ward or tag", code)
	}
	return rest[:j], rest[j+1:], seq, nil
}
