package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vistari-app/vistari-api/internal/models"
	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
)

type referralRepository interface {
	FindCodeByUser(ctx context.Context, userID string) (*models.ReferralCode, error)
	FindCodeByValue(ctx context.Context, code string) (*models.ReferralCode, error)
	CreateCode(ctx context.Context, code *models.ReferralCode) error
	CreateUse(ctx context.Context, use *models.ReferralUse) error
	HasUseByUser(ctx context.Context, referredUserID string) (bool, error)
	CountValidUses(ctx context.Context, codeID string) (int, error)
	CountRewards(ctx context.Context, userID string) (int, error)
	CreateReward(ctx context.Context, reward *models.ReferralReward) error
}

// ReferralConfig tunes code generation and reward cadence.
type ReferralConfig struct {
	RewardThreshold int
	CodePrefix      string
}

// ReferralSummary reports a user's referral standing.
type ReferralSummary struct {
	Code            string `json:"code"`
	ValidReferrals  int    `json:"valid_referrals"`
	RewardsEarned   int    `json:"rewards_earned"`
	NextRewardAfter int    `json:"next_reward_after"`
}

// ReferralService manages invite codes, redemptions and rewards. Each
// batch of valid referrals earns the referrer one timetable creation
// credit and one regeneration credit.
type ReferralService struct {
	repo   referralRepository
	logger *zap.Logger
	config ReferralConfig
}

// NewReferralService constructs a ReferralService.
func NewReferralService(repo referralRepository, logger *zap.Logger, config ReferralConfig) *ReferralService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.RewardThreshold <= 0 {
		config.RewardThreshold = 5
	}
	if config.CodePrefix == "" {
		config.CodePrefix = "VIS"
	}
	return &ReferralService{repo: repo, logger: logger, config: config}
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeForUser returns the user's referral code, creating one on first
// request.
func (s *ReferralService) CodeForUser(ctx context.Context, userID string) (*models.ReferralCode, error) {
	code, err := s.repo.FindCodeByUser(ctx, userID)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load referral code")
	}

	value, err := s.generateCode()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate referral code")
	}
	created := &models.ReferralCode{UserID: userID, Code: value}
	if err := s.repo.CreateCode(ctx, created); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create referral code")
	}
	return created, nil
}

// Redeem records a use of the given code by a freshly registered user.
// Uses by addresses the validation service rejected are stored but
// marked invalid, so they never count toward rewards.
func (s *ReferralService) Redeem(ctx context.Context, code, referredUserID string, emailValid bool, reason string) error {
	stored, err := s.repo.FindCodeByValue(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "unknown referral code")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up referral code")
	}

	if stored.UserID == referredUserID {
		return appErrors.Clone(appErrors.ErrValidation, "cannot redeem your own referral code")
	}

	used, err := s.repo.HasUseByUser(ctx, referredUserID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prior redemptions")
	}
	if used {
		return appErrors.Clone(appErrors.ErrConflict, "a referral code was already redeemed for this account")
	}

	use := &models.ReferralUse{
		ReferralCodeID:   stored.ID,
		ReferredUserID:   referredUserID,
		Valid:            emailValid,
		ValidationReason: reason,
	}
	if err := s.repo.CreateUse(ctx, use); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record referral")
	}

	if emailValid {
		if err := s.grantPendingRewards(ctx, stored); err != nil {
			// the use is recorded, rewards catch up on the next redemption
			s.logger.Warn("failed to grant referral rewards", zap.String("user_id", stored.UserID), zap.Error(err))
		}
	}
	return nil
}

// Summary returns the user's code plus redemption and reward counts.
func (s *ReferralService) Summary(ctx context.Context, userID string) (*ReferralSummary, error) {
	code, err := s.CodeForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	validUses, err := s.repo.CountValidUses(ctx, code.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count referrals")
	}
	rewards, err := s.repo.CountRewards(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count rewards")
	}

	return &ReferralSummary{
		Code:            code.Code,
		ValidReferrals:  validUses,
		RewardsEarned:   rewards,
		NextRewardAfter: s.config.RewardThreshold - validUses%s.config.RewardThreshold,
	}, nil
}

func (s *ReferralService) grantPendingRewards(ctx context.Context, code *models.ReferralCode) error {
	validUses, err := s.repo.CountValidUses(ctx, code.ID)
	if err != nil {
		return fmt.Errorf("count valid uses: %w", err)
	}
	granted, err := s.repo.CountRewards(ctx, code.UserID)
	if err != nil {
		return fmt.Errorf("count rewards: %w", err)
	}

	earned := validUses / s.config.RewardThreshold
	for i := granted; i < earned; i++ {
		reward := &models.ReferralReward{
			UserID:          code.UserID,
			CreationCredits: 1,
			RegenCredits:    1,
		}
		if err := s.repo.CreateReward(ctx, reward); err != nil {
			return fmt.Errorf("create reward: %w", err)
		}
		s.logger.Info("referral reward granted", zap.String("user_id", code.UserID))
	}
	return nil
}

func (s *ReferralService) generateCode() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	suffix := make([]byte, len(buf))
	for i, b := range buf {
		suffix[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return s.config.CodePrefix + string(suffix), nil
}
