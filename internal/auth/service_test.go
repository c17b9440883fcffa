package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/clothing-store-backend/internal/users"
	pkgAuth "github.com/angelmondragon/clothing-store-backend/pkg/auth"
	"github.com/angelmondragon/clothing-store-backend/pkg/auth/session"
	"github.com/angelmondragon/clothing-store-backend/pkg/config"
	"github.com/angelmondragon/clothing-store-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/clothing-store-backend/pkg/errors"
	"github.com/angelmondragon/clothing-store-backend/pkg/security"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var (
	testJWT = config.JWTConfig{
		Secret:                 "secret",
		Issuer:                 "clothing-store",
		ExpirationMinutes:      30,
		RefreshTokenTTLMinutes: 60 * 24,
	}
	weakPassword   = config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	strongPassword = config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 2, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
)

type memoryBackend struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memoryBackend) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryBackend) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *memoryBackend) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryBackend) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

type harness struct {
	svc      Service
	users    *users.Repository
	sessions *session.Manager
}

func newHarness(t *testing.T, passwordCfg config.PasswordConfig) harness {
	t.Helper()
	client := dbtest.OpenClient(t)
	repo := users.NewRepository(client.DB())
	manager, err := session.NewManager(&memoryBackend{data: map[string]string{}}, testJWT)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		DB:             client,
		SessionManager: manager,
		JWTConfig:      testJWT,
		PasswordConfig: passwordCfg,
	})
	require.NoError(t, err)
	return harness{svc: svc, users: repo, sessions: manager}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, pkgerrors.HasCode(err, code), "expected %s, got %v", code, err)
}

func TestRegisterIssuesSession(t *testing.T) {
	h := newHarness(t, weakPassword)
	ctx := context.Background()

	resp, err := h.svc.Register(ctx, RegisterRequest{Name: "Ada", Email: " Ada@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", resp.User.Email)
	require.NotEmpty(t, resp.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, claims.UserID)

	live, err := h.sessions.HasSession(ctx, claims.ID)
	require.NoError(t, err)
	require.True(t, live)

	stored, err := h.users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", stored.PasswordHash)
	ok, err := security.VerifyPassword("secret1", stored.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	h := newHarness(t, weakPassword)
	ctx := context.Background()

	_, err := h.svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = h.svc.Register(ctx, RegisterRequest{Name: "Other", Email: "ADA@example.com", Password: "secret2"})
	requireCode(t, err, pkgerrors.CodeConflict)
	require.Equal(t, "email already registered", pkgerrors.As(err).Message())
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t, weakPassword)
	cases := []RegisterRequest{
		{Name: " ", Email: "ada@example.com", Password: "secret1"},
		{Name: "Ada", Email: "", Password: "secret1"},
		{Name: "Ada", Email: "ada@example.com", Password: "12345"},
	}
	for _, req := range cases {
		_, err := h.svc.Register(context.Background(), req)
		requireCode(t, err, pkgerrors.CodeValidation)
	}
}

func TestLoginSuccessRecordsLastLogin(t *testing.T) {
	h := newHarness(t, weakPassword)
	ctx := context.Background()
	registered, err := h.svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	resp, err := h.svc.Login(ctx, LoginRequest{Email: "ADA@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, resp.User.ID)
	require.NotNil(t, resp.User.LastLoginAt)

	stored, err := h.users.FindByID(ctx, registered.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newHarness(t, weakPassword)
	ctx := context.Background()
	_, err := h.svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	for _, req := range []LoginRequest{
		{Email: "ada@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "secret1"},
		{Email: "  ", Password: "secret1"},
	} {
		_, err := h.svc.Login(ctx, req)
		requireCode(t, err, pkgerrors.CodeUnauthorized)
		require.Equal(t, invalidCredentialsMessage, pkgerrors.As(err).Message())
	}
}

func TestLoginUpgradesWeakHash(t *testing.T) {
	h := newHarness(t, strongPassword)
	ctx := context.Background()

	weakHash, err := security.HashPassword("secret1", weakPassword)
	require.NoError(t, err)
	user, err := h.users.Create(ctx, users.CreateUserDTO{Name: "Ada", Email: "ada@example.com", PasswordHash: weakHash})
	require.NoError(t, err)

	_, err = h.svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	stored, err := h.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotEqual(t, weakHash, stored.PasswordHash)
	require.False(t, security.NeedsRehash(stored.PasswordHash, strongPassword))
}

func TestRefreshRotatesSession(t *testing.T) {
	h := newHarness(t, weakPassword)
	ctx := context.Background()
	login, err := h.svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	oldClaims, err := pkgAuth.ParseAccessToken(testJWT, login.AccessToken)
	require.NoError(t, err)

	pair, err := h.svc.Refresh(ctx, login.AccessToken, login.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, login.RefreshToken, pair.RefreshToken)

	newClaims, err := pkgAuth.ParseAccessToken(testJWT, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, oldClaims.UserID, newClaims.UserID)
	require.NotEqual(t, oldClaims.ID, newClaims.ID)

	live, err := h.sessions.HasSession(ctx, oldClaims.ID)
	require.NoError(t, err)
	require.False(t, live)

	_, err = h.svc.Refresh(ctx, login.AccessToken, login.RefreshToken)
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestRefreshAcceptsExpiredAccessToken(t *testing.T) {
	h := newHarness(t, weakPassword)
	ctx := context.Background()
	userID := uuid.New()
	accessID := session.NewAccessID()

	expired, err := pkgAuth.MintAccessToken(testJWT, time.Now().Add(-2*time.Hour), pkgAuth.AccessTokenPayload{UserID: userID, JTI: accessID})
	require.NoError(t, err)
	refresh, err := h.sessions.Generate(ctx, accessID)
	require.NoError(t, err)

	pair, err := h.svc.Refresh(ctx, expired, refresh)
	require.NoError(t, err)
	claims, err := pkgAuth.ParseAccessToken(testJWT, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
}

func TestLogoutRevokesSession(t *testing.T) {
	h := newHarness(t, weakPassword)
	ctx := context.Background()
	login, err := h.svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, h.svc.Logout(ctx, login.AccessToken))

	claims, err := pkgAuth.ParseAccessToken(testJWT, login.AccessToken)
	require.NoError(t, err)
	live, err := h.sessions.HasSession(ctx, claims.ID)
	require.NoError(t, err)
	require.False(t, live)

	requireCode(t, h.svc.Logout(ctx, ""), pkgerrors.CodeUnauthorized)
	requireCode(t, h.svc.Logout(ctx, "not-a-jwt"), pkgerrors.CodeUnauthorized)
}

func TestMe(t *testing.T) {
	h := newHarness(t, weakPassword)
	ctx := context.Background()
	login, err := h.svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	me, err := h.svc.Me(ctx, login.User.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada", me.Name)

	_, err = h.svc.Me(ctx, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
	_, err = h.svc.Me(ctx, uuid.Nil)
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}
