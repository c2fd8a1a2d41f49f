package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vistari-app/vistari-api/internal/models"
)

// ReferralRepository persists referral codes, their uses and the
// rewards they have earned.
type ReferralRepository struct {
	db *sqlx.DB
}

// NewReferralRepository constructs a referral repository.
func NewReferralRepository(db *sqlx.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// FindCodeByUser returns the user's referral code.
func (r *ReferralRepository) FindCodeByUser(ctx context.Context, userID string) (*models.ReferralCode, error) {
	const query = `SELECT id, user_id, code, created_at FROM referral_codes WHERE user_id = $1 LIMIT 1`
	var code models.ReferralCode
	if err := r.db.GetContext(ctx, &code, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find referral code by user: %w", err)
	}
	return &code, nil
}

// FindCodeByValue returns the referral code record for a literal code.
func (r *ReferralRepository) FindCodeByValue(ctx context.Context, code string) (*models.ReferralCode, error) {
	const query = `SELECT id, user_id, code, created_at FROM referral_codes WHERE code = $1 LIMIT 1`
	var stored models.ReferralCode
	if err := r.db.GetContext(ctx, &stored, query, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find referral code: %w", err)
	}
	return &stored, nil
}

// CreateCode inserts a referral code.
func (r *ReferralRepository) CreateCode(ctx context.Context, code *models.ReferralCode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO referral_codes (id, user_id, code, created_at) VALUES (:id, :user_id, :code, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("create referral code: %w", err)
	}
	return nil
}

// CreateUse records a signup made with a referral code.
func (r *ReferralRepository) CreateUse(ctx context.Context, use *models.ReferralUse) error {
	if use.ID == "" {
		use.ID = uuid.NewString()
	}
	if use.CreatedAt.IsZero() {
		use.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO referral_uses (id, referral_code_id, referred_user_id, is_valid, validation_reason, created_at)
VALUES (:id, :referral_code_id, :referred_user_id, :is_valid, :validation_reason, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, use); err != nil {
		return fmt.Errorf("create referral use: %w", err)
	}
	return nil
}

// HasUseByUser reports whether the referred user already redeemed a code.
func (r *ReferralRepository) HasUseByUser(ctx context.Context, referredUserID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM referral_uses WHERE referred_user_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, referredUserID); err != nil {
		return false, fmt.Errorf("count referral uses by user: %w", err)
	}
	return count > 0, nil
}

// CountValidUses counts uses of a code that passed validation.
func (r *ReferralRepository) CountValidUses(ctx context.Context, codeID string) (int, error) {
	const query = `SELECT COUNT(*) FROM referral_uses WHERE referral_code_id = $1 AND is_valid = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, codeID); err != nil {
		return 0, fmt.Errorf("count valid referral uses: %w", err)
	}
	return count, nil
}

// CountRewards counts rewards already granted to a user.
func (r *ReferralRepository) CountRewards(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM referral_rewards WHERE user_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count referral rewards: %w", err)
	}
	return count, nil
}

// CreateReward grants a reward to a user.
func (r *ReferralRepository) CreateReward(ctx context.Context, reward *models.ReferralReward) error {
	if reward.ID == "" {
		reward.ID = uuid.NewString()
	}
	if reward.GrantedAt.IsZero() {
		reward.GrantedAt = time.Now().UTC()
	}
	const query = `INSERT INTO referral_rewards (id, user_id, creation_credits, regen_credits, granted_at)
VALUES (:id, :user_id, :creation_credits, :regen_credits, :granted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reward); err != nil {
		return fmt.Errorf("create referral reward: %w", err)
	}
	return nil
}
