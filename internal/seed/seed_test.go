package seed

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY,
			sku TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS licenses (
			id INTEGER PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'pending',
			customer_email TEXT NOT NULL,
			owner_id BIGINT,
			product_id BIGINT NOT NULL,
			claimed_at DATETIME,
			claim_token TEXT UNIQUE,
			metadata TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

func TestEnsureDemoCatalogIsIdempotent(t *testing.T) {
	db := setupSeedTestDB(t)

	for run := 0; run < 2; run++ {
		if err := EnsureDemoCatalog(db); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
	}

	var productCount, licenseCount int64
	if err := db.Table("products").Count(&productCount).Error; err != nil {
		t.Fatalf("count products: %v", err)
	}
	if err := db.Table("licenses").Count(&licenseCount).Error; err != nil {
		t.Fatalf("count licenses: %v", err)
	}
	if productCount != int64(len(demoProducts)) {
		t.Fatalf("expected %d products, got %d", len(demoProducts), productCount)
	}
	if licenseCount != int64(len(demoCodes)) {
		t.Fatalf("expected %d licenses, got %d", len(demoCodes), licenseCount)
	}
}

func TestEnsureDemoCatalogLicensesAreClaimable(t *testing.T) {
	db := setupSeedTestDB(t)
	if err := EnsureDemoCatalog(db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var pending int64
	err := db.Table("licenses").
		Where("status = ? AND customer_email = ? AND claim_token IS NOT NULL", "pending", demoEmail).
		Count(&pending).Error
	if err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if pending != int64(len(demoCodes)) {
		t.Fatalf("expected %d claimable licenses, got %d", len(demoCodes), pending)
	}
}
