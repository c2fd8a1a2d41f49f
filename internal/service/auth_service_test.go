package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vistari-app/vistari-api/internal/models"
	"github.com/vistari-app/vistari-api/pkg/emailcheck"
	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
)

type mockAuthRepo struct {
	users            map[string]*models.User
	bans             []*models.BannedUser
	refreshTokens    map[string]*models.RefreshToken
	created          []*models.User
	lastLoginUpdated bool
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{
		users:         make(map[string]*models.User),
		refreshTokens: make(map[string]*models.RefreshToken),
	}
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	m.users[user.Email] = user
	m.created = append(m.created, user)
	return nil
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.users[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindBan(ctx context.Context, userID, email string) (*models.BannedUser, error) {
	for _, ban := range m.bans {
		if ban.Email != nil && *ban.Email == email {
			return ban, nil
		}
		if ban.UserID != nil && *ban.UserID == userID {
			return ban, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	for _, user := range m.users {
		if user.ID == id {
			user.PasswordHash = passwordHash
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	for _, token := range m.refreshTokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

type mockRedeemer struct {
	calls []string
	err   error
}

func (m *mockRedeemer) Redeem(ctx context.Context, code, referredUserID string, emailValid bool, reason string) error {
	m.calls = append(m.calls, code)
	return m.err
}

func newAuthService(repo *mockAuthRepo, redeemer referralRedeemer, verifier emailcheck.Verifier) *AuthService {
	return NewAuthService(repo, redeemer, verifier, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "vistari-api",
	})
}

func TestAuthServiceRegisterSuccess(t *testing.T) {
	repo := newMockAuthRepo()
	redeemer := &mockRedeemer{}
	svc := newAuthService(repo, redeemer, emailcheck.Noop{})

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:        "Student@Example.com",
		Password:     "password123",
		FullName:     "Ada Lovelace",
		ReferralCode: "VISABCDE",
	})
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", res.User.Email)
	assert.True(t, res.ReferralRecorded)
	assert.Len(t, repo.created, 1)
	assert.Equal(t, []string{"VISABCDE"}, redeemer.calls)
}

func TestAuthServiceRegisterBannedEmail(t *testing.T) {
	repo := newMockAuthRepo()
	email := "blocked@example.com"
	repo.bans = append(repo.bans, &models.BannedUser{Email: &email, Reason: "abuse"})
	svc := newAuthService(repo, &mockRedeemer{}, emailcheck.Noop{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    email,
		Password: "password123",
		FullName: "Blocked",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAccountBanned.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := newMockAuthRepo()
	repo.users["taken@example.com"] = &models.User{ID: "u1", Email: "taken@example.com"}
	svc := newAuthService(repo, &mockRedeemer{}, emailcheck.Noop{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "taken@example.com",
		Password: "password123",
		FullName: "Dup",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterBadReferralStillSucceeds(t *testing.T) {
	repo := newMockAuthRepo()
	redeemer := &mockRedeemer{err: appErrors.Clone(appErrors.ErrNotFound, "unknown referral code")}
	svc := newAuthService(repo, redeemer, emailcheck.Noop{})

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:        "new@example.com",
		Password:     "password123",
		FullName:     "New",
		ReferralCode: "BOGUS",
	})
	require.NoError(t, err)
	assert.False(t, res.ReferralRecorded)
	assert.Equal(t, "unknown referral code", res.ReferralNote)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := newMockAuthRepo()
	repo.users["user@example.com"] = &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(password), Active: true}
	svc := newAuthService(repo, &mockRedeemer{}, emailcheck.Noop{})

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.True(t, repo.lastLoginUpdated)
}

func TestAuthServiceLoginBannedUser(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := newMockAuthRepo()
	repo.users["user@example.com"] = &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(password), Active: true}
	userID := "u1"
	repo.bans = append(repo.bans, &models.BannedUser{UserID: &userID, Reason: "abuse"})
	svc := newAuthService(repo, &mockRedeemer{}, emailcheck.Noop{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAccountBanned.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := newMockAuthRepo()
	repo.users["user@example.com"] = &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(password), Active: true}
	svc := newAuthService(repo, &mockRedeemer{}, emailcheck.Noop{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshTokenRotation(t *testing.T) {
	repo := newMockAuthRepo()
	repo.users["user@example.com"] = &models.User{ID: "u1", Email: "user@example.com", Active: true}
	repo.refreshTokens["token"] = &models.RefreshToken{ID: "rt1", UserID: "u1", Token: "token", ExpiresAt: time.Now().Add(time.Hour)}
	svc := newAuthService(repo, &mockRedeemer{}, emailcheck.Noop{})

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.NoError(t, err)
	assert.NotEqual(t, "token", res.RefreshToken)
	assert.True(t, repo.refreshTokens["token"].Revoked)
}

func TestAuthServiceRefreshTokenExpired(t *testing.T) {
	repo := newMockAuthRepo()
	repo.users["user@example.com"] = &models.User{ID: "u1", Email: "user@example.com", Active: true}
	repo.refreshTokens["token"] = &models.RefreshToken{ID: "rt1", UserID: "u1", Token: "token", ExpiresAt: time.Now().Add(-time.Hour)}
	svc := newAuthService(repo, &mockRedeemer{}, emailcheck.Noop{})

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	oldHash, _ := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.DefaultCost)
	repo := newMockAuthRepo()
	repo.users["user@example.com"] = &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(oldHash), Active: true}
	svc := newAuthService(repo, &mockRedeemer{}, emailcheck.Noop{})

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "old-password", NewPassword: "new-password"})
	require.NoError(t, err)
	assert.NotEqual(t, string(oldHash), repo.users["user@example.com"].PasswordHash)
}

func TestAuthServiceValidateToken(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newAuthService(repo, &mockRedeemer{}, emailcheck.Noop{})

	token, err := svc.generateAccessToken(&models.User{ID: "u1", Email: "user@example.com", FullName: "Ada"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Ada", claims.FullName)
}
