package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	licensedomain "github.com/starter-spark/kitclaim/internal/license/domain"
)

func setupLicenseTestDB(t *testing.T) *gorm.DB {
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

	if err := db.Exec(
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
	).Error; err != nil {
		t.Fatalf("create licenses: %v", err)
	}
	return db
}

func insertLicense(t *testing.T, db *gorm.DB, id int64, code, email, status string, owner *int64) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO licenses (id, code, status, customer_email, owner_id, product_id, claim_token)
		 VALUES (?, ?, ?, ?, ?, 1, ?)`,
		id, code, status, email, owner, fmt.Sprintf("token-%d", id),
	).Error; err != nil {
		t.Fatalf("insert license: %v", err)
	}
}

func TestClaimPendingWins(t *testing.T) {
	db := setupLicenseTestDB(t)
	repo := &Repository{}
	insertLicense(t, db, 1, "AB12-CD34-EF56-GH78", "maker@example.com", licensedomain.StatusPending, nil)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	won, err := repo.ClaimPending(context.Background(), db, 1, 42, "Maker@Example.COM", now)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !won {
		t.Fatalf("expected claim to win")
	}

	license, err := repo.FindByID(context.Background(), db, 1)
	if err != nil || license == nil {
		t.Fatalf("reload: %v", err)
	}
	if license.Status != licensedomain.StatusClaimed {
		t.Fatalf("expected claimed, got %q", license.Status)
	}
	if license.OwnerID == nil || *license.OwnerID != snowflake.ID(42) {
		t.Fatalf("expected owner 42, got %v", license.OwnerID)
	}
	if license.ClaimedAt == nil {
		t.Fatalf("expected claimed_at set")
	}
	if license.ClaimToken != nil {
		t.Fatalf("expected claim token cleared, got %v", *license.ClaimToken)
	}
}

func TestClaimPendingLosesSecondAttempt(t *testing.T) {
	db := setupLicenseTestDB(t)
	repo := &Repository{}
	insertLicense(t, db, 1, "AB12-CD34-EF56-GH78", "maker@example.com", licensedomain.StatusPending, nil)

	now := time.Now().UTC()
	won, err := repo.ClaimPending(context.Background(), db, 1, 42, "maker@example.com", now)
	if err != nil || !won {
		t.Fatalf("first claim should win: won=%v err=%v", won, err)
	}

	won, err = repo.ClaimPending(context.Background(), db, 1, 43, "maker@example.com", now)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if won {
		t.Fatalf("expected second claim to affect zero rows")
	}

	license, _ := repo.FindByID(context.Background(), db, 1)
	if license.OwnerID == nil || *license.OwnerID != snowflake.ID(42) {
		t.Fatalf("expected first claimer to keep ownership, got %v", license.OwnerID)
	}
}

func TestClaimPendingEmailPredicate(t *testing.T) {
	db := setupLicenseTestDB(t)
	repo := &Repository{}
	insertLicense(t, db, 1, "AB12-CD34-EF56-GH78", "maker@example.com", licensedomain.StatusPending, nil)

	won, err := repo.ClaimPending(context.Background(), db, 1, 42, "intruder@example.com", time.Now().UTC())
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if won {
		t.Fatalf("expected email mismatch to affect zero rows")
	}

	license, _ := repo.FindByID(context.Background(), db, 1)
	if license.Status != licensedomain.StatusPending {
		t.Fatalf("expected license untouched, got %q", license.Status)
	}
}

func TestRejectPendingClearsToken(t *testing.T) {
	db := setupLicenseTestDB(t)
	repo := &Repository{}
	insertLicense(t, db, 1, "AB12-CD34-EF56-GH78", "maker@example.com", licensedomain.StatusPending, nil)

	won, err := repo.RejectPending(context.Background(), db, 1, "maker@example.com", time.Now().UTC())
	if err != nil || !won {
		t.Fatalf("reject should win: won=%v err=%v", won, err)
	}

	license, _ := repo.FindByID(context.Background(), db, 1)
	if license.Status != licensedomain.StatusRejected {
		t.Fatalf("expected rejected, got %q", license.Status)
	}
	if license.ClaimToken != nil {
		t.Fatalf("expected claim token cleared")
	}
	if license.OwnerID != nil || license.ClaimedAt != nil {
		t.Fatalf("reject must not set owner or claimed_at")
	}
}

func TestRejectPendingTerminalStates(t *testing.T) {
	db := setupLicenseTestDB(t)
	repo := &Repository{}
	owner := int64(7)
	insertLicense(t, db, 1, "AAAA-BBBB-CCCC-DDDD", "maker@example.com", licensedomain.StatusClaimed, &owner)
	insertLicense(t, db, 2, "EEEE-FFFF-GGGG-HHHH", "maker@example.com", licensedomain.StatusRejected, nil)
	insertLicense(t, db, 3, "IIII-JJJJ-KKKK-LLLL", "maker@example.com", licensedomain.StatusClaimedByOther, nil)

	for _, id := range []snowflake.ID{1, 2, 3} {
		won, err := repo.RejectPending(context.Background(), db, id, "maker@example.com", time.Now().UTC())
		if err != nil {
			t.Fatalf("reject %d: %v", id, err)
		}
		if won {
			t.Fatalf("expected terminal license %d to be untouchable", id)
		}
	}
}

func TestFindByCode(t *testing.T) {
	db := setupLicenseTestDB(t)
	repo := &Repository{}
	insertLicense(t, db, 1, "AB12-CD34-EF56-GH78", "maker@example.com", licensedomain.StatusPending, nil)

	license, err := repo.FindByCode(context.Background(), db, "AB12-CD34-EF56-GH78")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if license == nil || license.ID != 1 {
		t.Fatalf("expected license 1, got %+v", license)
	}

	missing, err := repo.FindByCode(context.Background(), db, "ZZZZ-ZZZZ-ZZZZ-ZZZZ")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown code, got %+v err=%v", missing, err)
	}
}

func TestListPendingByEmailCaseInsensitive(t *testing.T) {
	db := setupLicenseTestDB(t)
	repo := &Repository{}
	insertLicense(t, db, 1, "AAAA-BBBB-CCCC-DDDD", "Maker@Example.com", licensedomain.StatusPending, nil)
	insertLicense(t, db, 2, "EEEE-FFFF-GGGG-HHHH", "other@example.com", licensedomain.StatusPending, nil)
	owner := int64(7)
	insertLicense(t, db, 3, "IIII-JJJJ-KKKK-LLLL", "maker@example.com", licensedomain.StatusClaimed, &owner)

	licenses, err := repo.ListPendingByEmail(context.Background(), db, "MAKER@example.COM")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(licenses) != 1 || licenses[0].ID != 1 {
		t.Fatalf("expected only pending license 1, got %+v", licenses)
	}
}

func TestListClaimedByOwner(t *testing.T) {
	db := setupLicenseTestDB(t)
	repo := &Repository{}
	owner := int64(42)
	other := int64(43)
	insertLicense(t, db, 1, "AAAA-BBBB-CCCC-DDDD", "maker@example.com", licensedomain.StatusClaimed, &owner)
	insertLicense(t, db, 2, "EEEE-FFFF-GGGG-HHHH", "maker@example.com", licensedomain.StatusClaimed, &other)
	insertLicense(t, db, 3, "IIII-JJJJ-KKKK-LLLL", "maker@example.com", licensedomain.StatusPending, nil)

	licenses, err := repo.ListClaimedByOwner(context.Background(), db, 42)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(licenses) != 1 || licenses[0].ID != 1 {
		t.Fatalf("expected only license 1, got %+v", licenses)
	}
}
