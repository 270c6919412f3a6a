package audit

import (
	"context"
	"testing"
)

func TestParseAction(t *testing.T) {
	for _, s := range []string{"create", "update", "delete", "submit", "start_inspection", "approve", "reject", "return"} {
		if _, err := ParseAction(s); err != nil {
			t.Fatalf("ParseAction(%q) unexpected err: %v", s, err)
		}
	}
	for _, s := range []string{"", "CREATE", "approved", "drop"} {
		if _, err := ParseAction(s); err == nil {
			t.Fatalf("ParseAction(%q) expected error", s)
		}
	}
}

func TestParseEntityKind(t *testing.T) {
	if k, err := ParseEntityKind("property_application"); err != nil || k != EntityPropertyApplication {
		t.Fatalf("got %q, %v", k, err)
	}
	if _, err := ParseEntityKind("spaceship"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !EntityAuditLog.Valid() {
		t.Fatal("audit_log must be a known kind")
	}
}

func TestProvenanceContext(t *testing.T) {
	if got := ProvenanceFrom(context.Background()); got != (Provenance{}) {
		t.Fatalf("empty context should yield zero provenance, got %+v", got)
	}
	ctx := WithProvenance(context.Background(), Provenance{IPAddress: "10.0.0.1", UserAgent: "curl/8"})
	got := ProvenanceFrom(ctx)
	if got.IPAddress != "10.0.0.1" || got.UserAgent != "curl/8" {
		t.Fatalf("unexpected provenance: %+v", got)
	}
}

func TestEntryHooksRejectMutation(t *testing.T) {
	var e Entry
	if err := e.BeforeUpdate(nil); err != ErrImmutable {
		t.Fatalf("BeforeUpdate = %v, want ErrImmutable", err)
	}
	if err := e.BeforeDelete(nil); err != ErrImmutable {
		t.Fatalf("BeforeDelete = %v, want ErrImmutable", err)
	}
}
