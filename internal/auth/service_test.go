package auth

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	pkgauth "github.com/medirush/medirush-backend/pkg/auth"
	"github.com/medirush/medirush-backend/pkg/auth/session"
	"github.com/medirush/medirush-backend/pkg/config"
	"github.com/medirush/medirush-backend/pkg/db/models"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
)

var codePattern = regexp.MustCompile(`code is (\d{6})`)

type fakeOTPStore struct {
	values map[string]string
	counts map[string]int64
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{values: map[string]string{}, counts: map[string]int64{}}
}

func (f *fakeOTPStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeOTPStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", redislib.Nil
}

func (f *fakeOTPStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
		delete(f.counts, key)
	}
	return nil
}

func (f *fakeOTPStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeOTPStore) OTPCodeKey(phone string) string     { return "test:otp:code:" + phone }
func (f *fakeOTPStore) OTPAttemptsKey(phone string) string { return "test:otp:attempts:" + phone }

type fakeUserRepo struct {
	byPhone map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byPhone: map[string]*models.User{}}
}

func (f *fakeUserRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	if u, ok := f.byPhone[phone]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	f.byPhone[user.Phone] = user
	return nil
}

type fakeSessions struct {
	active map[string]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{active: map[string]string{}}
}

func (f *fakeSessions) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.active[accessID] = token
	return token, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if f.active[oldAccessID] != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.active, oldAccessID)
	newID := "rotated-" + oldAccessID
	token := "refresh-" + newID
	f.active[newID] = token
	return newID, token, nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	delete(f.active, accessID)
	return nil
}

type fakeSender struct {
	messages []string
}

func (f *fakeSender) Send(ctx context.Context, phone, message string) error {
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeSender) lastCode(t *testing.T) string {
	t.Helper()
	if len(f.messages) == 0 {
		t.Fatal("no sms sent")
	}
	match := codePattern.FindStringSubmatch(f.messages[len(f.messages)-1])
	if match == nil {
		t.Fatalf("no code in message %q", f.messages[len(f.messages)-1])
	}
	return match[1]
}

func testConfigs() (config.JWTConfig, config.OTPConfig) {
	jwtCfg := config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "medirush-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
	otpCfg := config.OTPConfig{
		TTL:               5 * time.Minute,
		Digits:            6,
		MaxVerifyAttempts: 3,
		ArgonMemoryKB:     1024,
		ArgonTime:         1,
		ArgonParallelism:  1,
		ArgonSaltLen:      16,
		ArgonKeyLen:       32,
	}
	return jwtCfg, otpCfg
}

type authFixture struct {
	svc      Service
	repo     *fakeUserRepo
	store    *fakeOTPStore
	sessions *fakeSessions
	sender   *fakeSender
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	jwtCfg, otpCfg := testConfigs()
	repo := newFakeUserRepo()
	store := newFakeOTPStore()
	sessions := newFakeSessions()
	sender := &fakeSender{}

	svc, err := NewService(repo, store, sessions, sender, jwtCfg, otpCfg, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return &authFixture{svc: svc, repo: repo, store: store, sessions: sessions, sender: sender}
}

func TestRequestAndVerifyOTP(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.RequestOTP(ctx, "+91 98765 43210"); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}

	pair, err := f.svc.VerifyOTP(ctx, "+919876543210", f.sender.lastCode(t))
	if err != nil {
		t.Fatalf("VerifyOTP returned error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected full token pair, got %+v", pair)
	}
	if pair.User == nil || pair.User.Phone != "+919876543210" {
		t.Fatalf("expected registered user, got %+v", pair.User)
	}

	jwtCfg, _ := testConfigs()
	claims, err := pkgauth.ParseAccessToken(jwtCfg, pair.AccessToken)
	if err != nil {
		t.Fatalf("minted token failed to parse: %v", err)
	}
	if claims.UserID != pair.User.ID || claims.Phone != pair.User.Phone {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.RequestOTP(ctx, "+919876543210"); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}

	_, err := f.svc.VerifyOTP(ctx, "+919876543210", "000000")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestVerifyOTPWithoutRequest(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.VerifyOTP(context.Background(), "+919876543210", "123456")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestVerifyOTPAttemptLimit(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.RequestOTP(ctx, "+919876543210"); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := f.svc.VerifyOTP(ctx, "+919876543210", "000000"); err == nil {
			t.Fatal("expected wrong-code error")
		}
	}

	// Fourth attempt exceeds the limit even with the right code.
	_, err := f.svc.VerifyOTP(ctx, "+919876543210", f.sender.lastCode(t))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestVerifyOTPBurnsCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.RequestOTP(ctx, "+919876543210"); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}
	code := f.sender.lastCode(t)

	if _, err := f.svc.VerifyOTP(ctx, "+919876543210", code); err != nil {
		t.Fatalf("first verify returned error: %v", err)
	}
	_, err := f.svc.VerifyOTP(ctx, "+919876543210", code)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected replay rejected, got %v", err)
	}
}

func TestVerifyOTPReusesExistingUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.RequestOTP(ctx, "+919876543210"); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}
	first, err := f.svc.VerifyOTP(ctx, "+919876543210", f.sender.lastCode(t))
	if err != nil {
		t.Fatalf("VerifyOTP returned error: %v", err)
	}

	if err := f.svc.RequestOTP(ctx, "+919876543210"); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}
	second, err := f.svc.VerifyOTP(ctx, "+919876543210", f.sender.lastCode(t))
	if err != nil {
		t.Fatalf("VerifyOTP returned error: %v", err)
	}
	if first.User.ID != second.User.ID {
		t.Fatalf("expected same account across logins: %s vs %s", first.User.ID, second.User.ID)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.RequestOTP(ctx, "+919876543210"); err != nil {
		t.Fatalf("RequestOTP returned error: %v", err)
	}
	pair, err := f.svc.VerifyOTP(ctx, "+919876543210", f.sender.lastCode(t))
	if err != nil {
		t.Fatalf("VerifyOTP returned error: %v", err)
	}

	refreshed, err := f.svc.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if refreshed.AccessToken == pair.AccessToken {
		t.Fatal("expected a new access token")
	}

	// The old refresh token is dead after rotation.
	_, err = f.svc.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for reused refresh token, got %v", err)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "+91 98765 43210", want: "+919876543210"},
		{in: "(987) 654-3210", want: "9876543210"},
		{in: "12345", wantErr: true},
		{in: "not-a-phone", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
