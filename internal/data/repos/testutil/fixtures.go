package testutil

import (
	"fmt"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/collections-backend/internal/domain"
)

func SeedCompanies(tb testing.TB, db *gorm.DB, n int) []types.Company {
	tb.Helper()
	out := make([]types.Company, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, types.Company{CompanyName: fmt.Sprintf("company-%03d", i)})
	}
	if n == 0 {
		return out
	}
	if err := db.CreateInBatches(&out, 200).Error; err != nil {
		tb.Fatalf("seed companies: %v", err)
	}
	return out
}

func SeedCollection(tb testing.TB, db *gorm.DB, name string) *types.Collection {
	tb.Helper()
	c := &types.Collection{CollectionName: name}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed collection: %v", err)
	}
	return c
}

func SeedMemberships(tb testing.TB, db *gorm.DB, collection *types.Collection, companies []types.Company) {
	tb.Helper()
	if len(companies) == 0 {
		return
	}
	rows := make([]types.Membership, 0, len(companies))
	for _, c := range companies {
		rows = append(rows, types.Membership{CompanyID: c.ID, CollectionID: collection.ID})
	}
	if err := db.CreateInBatches(&rows, 200).Error; err != nil {
		tb.Fatalf("seed memberships: %v", err)
	}
}

func CompanyIDs(companies []types.Company) []int {
	ids := make([]int, 0, len(companies))
	for _, c := range companies {
		ids = append(ids, c.ID)
	}
	return ids
}

func CountMemberships(tb testing.TB, db *gorm.DB, collection *types.Collection) int64 {
	tb.Helper()
	var n int64
	if err := db.Model(&types.Membership{}).Where("collection_id = ?", collection.ID).Count(&n).Error; err != nil {
		tb.Fatalf("count memberships: %v", err)
	}
	return n
}
