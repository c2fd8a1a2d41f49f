package models

import "time"

// ReferralCode is a user's shareable invite code.
type ReferralCode struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ReferralUse records one signup made with a referral code. Uses from
// addresses the validation service flagged remain on file but never
// count toward rewards.
type ReferralUse struct {
	ID               string    `db:"id" json:"id"`
	ReferralCodeID   string    `db:"referral_code_id" json:"referral_code_id"`
	ReferredUserID   string    `db:"referred_user_id" json:"referred_user_id"`
	Valid            bool      `db:"is_valid" json:"is_valid"`
	ValidationReason string    `db:"validation_reason" json:"validation_reason"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// ReferralReward is one earned reward: a timetable creation credit plus
// a regeneration credit.
type ReferralReward struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	CreationCredits int       `db:"creation_credits" json:"creation_credits"`
	RegenCredits    int       `db:"regen_credits" json:"regen_credits"`
	GrantedAt       time.Time `db:"granted_at" json:"granted_at"`
}
