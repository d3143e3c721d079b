package auth

import (
	"context"
	"testing"
	"time"

	pkgauth "github.com/mercantile-app/mercantile-backend/pkg/auth"
	"github.com/mercantile-app/mercantile-backend/pkg/config"
	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	"github.com/mercantile-app/mercantile-backend/pkg/enums"
	pkgerrors "github.com/mercantile-app/mercantile-backend/pkg/errors"
	"github.com/mercantile-app/mercantile-backend/pkg/security"
	"gorm.io/gorm"
)

type fakeUserStore struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]*models.User{}}
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	if user, ok := f.users[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

type fakeSessions struct {
	tokens map[string]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: map[string]string{}}
}

func (f *fakeSessions) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.tokens[accessID] = token
	return token, nil
}

func (f *fakeSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}
	delete(f.tokens, oldAccessID)
	newAccessID := oldAccessID + "-next"
	token := "refresh-" + newAccessID
	f.tokens[newAccessID] = token
	return newAccessID, token, nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	delete(f.tokens, accessID)
	return nil
}

func testConfigs() (config.JWTConfig, config.PasswordConfig) {
	jwtCfg := config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "mercantile-test",
		ExpirationMinutes: 15,
	}
	// tiny argon params keep the suite fast
	passwordCfg := config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
	return jwtCfg, passwordCfg
}

func newTestService(t *testing.T) (Service, *fakeUserStore, *fakeSessions) {
	t.Helper()

	jwtCfg, passwordCfg := testConfigs()
	users := newFakeUserStore()
	sessions := newFakeSessions()
	svc, err := NewService(users, sessions, jwtCfg, passwordCfg)
	if err != nil {
		t.Fatalf("service ctor failed: %v", err)
	}
	return svc, users, sessions
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []RegisterInput{
		{Email: "not-an-email", Password: "longenough", Name: "Ann", Role: enums.UserRoleShopper},
		{Email: "ann@example.com", Password: "short", Name: "Ann", Role: enums.UserRoleShopper},
		{Email: "ann@example.com", Password: "longenough", Name: "", Role: enums.UserRoleShopper},
		{Email: "ann@example.com", Password: "longenough", Name: "Ann", Role: enums.UserRoleAdmin},
	}
	for _, input := range cases {
		_, err := svc.Register(ctx, input)
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeValidation {
			t.Fatalf("input %+v: expected validation error, got %v", input, err)
		}
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ann@example.com",
		Password: "correct horse",
		Name:     "Ann",
		Role:     enums.UserRoleShopper,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.PasswordHash == "correct horse" {
		t.Fatal("password must not be stored in the clear")
	}

	ok, err := security.VerifyPassword("correct horse", user.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash must verify, ok=%v err=%v", ok, err)
	}
}

func TestLoginMintsVerifiableTokenPair(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		Email:    "merchant@example.com",
		Password: "correct horse",
		Name:     "Merch",
		Role:     enums.UserRoleMerchant,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, pair, err := svc.Login(ctx, "merchant@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("unexpected user %d", user.ID)
	}
	if user.LastLoginAt == nil {
		t.Fatal("login must stamp last_login_at")
	}

	jwtCfg, _ := testConfigs()
	claims, err := pkgauth.ParseAccessToken(jwtCfg, pair.AccessToken)
	if err != nil {
		t.Fatalf("access token must parse: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != enums.UserRoleMerchant {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if pair.RefreshToken == "" {
		t.Fatal("expected refresh token")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Email:    "ann@example.com",
		Password: "correct horse",
		Name:     "Ann",
		Role:     enums.UserRoleShopper,
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, err := svc.Login(ctx, "ann@example.com", "wrong")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	_, _, err = svc.Login(ctx, "ghost@example.com", "whatever")
	coded = pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	for _, user := range users.users {
		user.Active = false
	}
	_, _, err = svc.Login(ctx, "ann@example.com", "correct horse")
	coded = pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("disabled account must not log in, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Email:    "ann@example.com",
		Password: "correct horse",
		Name:     "Ann",
		Role:     enums.UserRoleShopper,
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, pair, err := svc.Login(ctx, "ann@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.AccessToken == pair.AccessToken || refreshed.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh must issue a fresh pair")
	}

	// the old refresh token is burned
	_, err = svc.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for replayed refresh, got %v", err)
	}

	if len(sessions.tokens) != 1 {
		t.Fatalf("expected exactly one live session, got %d", len(sessions.tokens))
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Email:    "ann@example.com",
		Password: "correct horse",
		Name:     "Ann",
		Role:     enums.UserRoleShopper,
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, pair, err := svc.Login(ctx, "ann@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	jwtCfg, _ := testConfigs()
	claims, err := pkgauth.ParseAccessToken(jwtCfg, pair.AccessToken)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if err := svc.Logout(ctx, claims.ID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if len(sessions.tokens) != 0 {
		t.Fatalf("expected no live sessions, got %d", len(sessions.tokens))
	}
}
