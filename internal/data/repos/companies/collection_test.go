package companies

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/collections-backend/internal/data/repos/testutil"
	"github.com/yungbote/collections-backend/internal/platform/dbctx"
)

func TestCollectionRepoLookups(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewCollectionRepo(db, testutil.Logger(t))

	liked := testutil.SeedCollection(t, db, "Liked Companies")

	got, err := repo.GetByID(dbc, liked.ID)
	if err != nil || got == nil || got.CollectionName != "Liked Companies" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	absent, err := repo.GetByID(dbc, uuid.New())
	if err != nil || absent != nil {
		t.Fatalf("GetByID unknown: got=%v err=%v", absent, err)
	}
	byName, err := repo.GetByName(dbc, "Liked Companies")
	if err != nil || byName == nil || byName.ID != liked.ID {
		t.Fatalf("GetByName: got=%v err=%v", byName, err)
	}
}

func TestCompanyRepoGetByIDs(t *testing.T) {
	db := testutil.DB(t)
	repo := NewCompanyRepo(db, testutil.Logger(t))
	companies := testutil.SeedCompanies(t, db, 3)

	got, err := repo.GetByIDs(dbctx.Context{Ctx: context.Background()}, []int{companies[2].ID, companies[0].ID, companies[0].ID, 424242})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetByIDs: want 2 distinct known rows, got %d", len(got))
	}
}
