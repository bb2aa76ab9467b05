// Package repository implements the license store on gorm.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	licensedomain "github.com/starter-spark/kitclaim/internal/license/domain"
)

type Repository struct{}

// Provide satisfies the license fx module.
func Provide() licensedomain.Repository {
	return &Repository{}
}

func (r *Repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*licensedomain.License, error) {
	var license licensedomain.License
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&license).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &license, nil
}

func (r *Repository) FindByCode(ctx context.Context, db *gorm.DB, code string) (*licensedomain.License, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var license licensedomain.License
	err := db.WithContext(ctx).
		Where("code = ?", code).
		First(&license).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &license, nil
}

func (r *Repository) FindByClaimToken(ctx context.Context, db *gorm.DB, token string) (*licensedomain.License, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	var license licensedomain.License
	err := db.WithContext(ctx).
		Where("claim_token = ?", token).
		First(&license).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &license, nil
}

func (r *Repository) ListPendingByEmail(ctx context.Context, db *gorm.DB, email string) ([]licensedomain.License, error) {
	var licenses []licensedomain.License
	err := db.WithContext(ctx).
		Where("status = ? AND LOWER(customer_email) = ?", licensedomain.StatusPending, strings.ToLower(email)).
		Order("created_at ASC, id ASC").
		Find(&licenses).Error
	if err != nil {
		return nil, err
	}
	return licenses, nil
}

func (r *Repository) ListClaimedByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) ([]licensedomain.License, error) {
	var licenses []licensedomain.License
	err := db.WithContext(ctx).
		Where("status = ? AND owner_id = ?", licensedomain.StatusClaimed, ownerID).
		Order("claimed_at ASC, id ASC").
		Find(&licenses).Error
	if err != nil {
		return nil, err
	}
	return licenses, nil
}

// ClaimPending performs the claim transition as one conditional statement.
// The predicate re-asserts every precondition at write time; zero rows
// affected means the caller lost whatever race or check applied.
func (r *Repository) ClaimPending(ctx context.Context, db *gorm.DB, id, ownerID snowflake.ID, email string, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE licenses
		 SET status = ?, owner_id = ?, claimed_at = ?, claim_token = NULL, updated_at = ?
		 WHERE id = ?
		   AND status = ?
		   AND owner_id IS NULL
		   AND LOWER(customer_email) = ?`,
		licensedomain.StatusClaimed,
		ownerID,
		now,
		now,
		id,
		licensedomain.StatusPending,
		strings.ToLower(email),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RejectPending performs the reject transition under the same predicate as
// ClaimPending. Rejecting also invalidates any outstanding claim link.
func (r *Repository) RejectPending(ctx context.Context, db *gorm.DB, id snowflake.ID, email string, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE licenses
		 SET status = ?, claim_token = NULL, updated_at = ?
		 WHERE id = ?
		   AND status = ?
		   AND owner_id IS NULL
		   AND LOWER(customer_email) = ?`,
		licensedomain.StatusRejected,
		now,
		id,
		licensedomain.StatusPending,
		strings.ToLower(email),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
