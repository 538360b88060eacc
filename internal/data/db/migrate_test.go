package db

import (
	"testing"

	"github.com/yungbote/collections-backend/internal/platform/logger"
)

func openMemory(t *testing.T) *Service {
	t.Helper()
	svc, err := Open(logger.Nop(), "sqlite://file::memory:?cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	return svc
}

func TestEnsureCollectionIsIdempotent(t *testing.T) {
	svc := openMemory(t)

	first, err := EnsureCollection(svc.DB(), "Liked Companies")
	if err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}
	second, err := EnsureCollection(svc.DB(), "Liked Companies")
	if err != nil {
		t.Fatalf("EnsureCollection again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same collection, got %s and %s", first.ID, second.ID)
	}
	if _, err := EnsureCollection(svc.DB(), "  "); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

func TestDialectorForRejectsUnknownScheme(t *testing.T) {
	if _, err := dialectorFor("mysql://root@localhost/db"); err == nil {
		t.Fatalf("expected unsupported scheme error")
	}
	if _, err := dialectorFor("sqlite://"); err == nil {
		t.Fatalf("expected missing path error")
	}
}
