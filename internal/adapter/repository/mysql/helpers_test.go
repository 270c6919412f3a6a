package mysql

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"civic-backoffice/internal/domain/actor"
	appDomain "civic-backoffice/internal/domain/application"
	wardDomain "civic-backoffice/internal/domain/ward"
	dbinfra "civic-backoffice/internal/infrastructure/db"
	"civic-backoffice/pkg/id"
)

// openTestDB opens a file-backed sqlite db with the real schema. A file is
// used instead of :memory: so every pooled connection sees the same data.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dbinfra.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := dbinfra.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedWard(t *testing.T, db *gorm.DB, code string) *wardDomain.Ward {
	t.Helper()
	w := &wardDomain.Ward{Code: code, Name: "Ward " + code, Active: true}
	if err := NewWardRepository(db).Upsert(context.Background(), w); err != nil {
		t.Fatalf("seed ward: %v", err)
	}
	got, err := NewWardRepository(db).GetByCode(context.Background(), code)
	if err != nil {
		t.Fatalf("reload ward: %v", err)
	}
	return got
}

func makeApplication(w *wardDomain.Ward, creator actor.Actor) *appDomain.Application {
	return &appDomain.Application{
		ApplicationNo: id.NewApplicationNo(time.Now()),
		Status:        appDomain.StatusDraft,
		WardID:        w.ID,
		WardCode:      w.Code,
		CreatedBy:     creator.Key(),
		CreatedByRole: creator.Role(),
		Payload: appDomain.Payload{
			OwnerName:    "Asha Rao",
			Address:      "14 Temple Street",
			PropertyType: "residential",
		},
	}
}
