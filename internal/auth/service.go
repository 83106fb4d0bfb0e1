package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	pkgauth "github.com/medirush/medirush-backend/pkg/auth"
	"github.com/medirush/medirush-backend/pkg/auth/session"
	"github.com/medirush/medirush-backend/pkg/config"
	"github.com/medirush/medirush-backend/pkg/db/models"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
	"github.com/medirush/medirush-backend/pkg/logger"
	"github.com/medirush/medirush-backend/pkg/security"
)

var phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{9,14}$`)

// OTPStore is the slice of Redis the OTP flow needs.
type OTPStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	OTPCodeKey(phone string) string
	OTPAttemptsKey(phone string) string
}

// SessionManager is the refresh-session surface the auth flow needs.
type SessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// TokenPair is the result of a successful verification or refresh.
type TokenPair struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user,omitempty"`
}

// Service runs the phone plus one-time-code login flow.
type Service interface {
	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (*TokenPair, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	repo     Repository
	store    OTPStore
	sessions SessionManager
	sender   SMSSender
	jwtCfg   config.JWTConfig
	otpCfg   config.OTPConfig
	logg     *logger.Logger
}

// NewService wires auth dependencies.
func NewService(
	repo Repository,
	store OTPStore,
	sessions SessionManager,
	sender SMSSender,
	jwtCfg config.JWTConfig,
	otpCfg config.OTPConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user repository required")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "otp store required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session manager required")
	}
	if sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sms sender required")
	}
	return &service{
		repo:     repo,
		store:    store,
		sessions: sessions,
		sender:   sender,
		jwtCfg:   jwtCfg,
		otpCfg:   otpCfg,
		logg:     logg,
	}, nil
}

// NormalizePhone strips separators and validates the number shape.
func NormalizePhone(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if !phonePattern.MatchString(cleaned) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid phone number")
	}
	return cleaned, nil
}

// RequestOTP issues a fresh code for the phone. Requesting again replaces
// the previous code and resets the attempt counter.
func (s *service) RequestOTP(ctx context.Context, phone string) error {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return err
	}

	code, err := security.GenerateOTP(s.otpCfg.Digits)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}
	encoded, err := security.HashOTP(code, s.otpCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash otp")
	}

	if err := s.store.Set(ctx, s.store.OTPCodeKey(normalized), encoded, s.otpCfg.TTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store otp")
	}
	if err := s.store.Del(ctx, s.store.OTPAttemptsKey(normalized)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset otp attempts")
	}

	message := fmt.Sprintf("Your MediRush verification code is %s. It expires in %d minutes.", code, int(s.otpCfg.TTL.Minutes()))
	if err := s.sender.Send(ctx, normalized, message); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send otp sms")
	}
	return nil
}

// VerifyOTP checks the code, creates the account on first login, and issues
// a token pair.
func (s *service) VerifyOTP(ctx context.Context, phone, code string) (*TokenPair, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code required")
	}

	attempts, err := s.store.IncrWithTTL(ctx, s.store.OTPAttemptsKey(normalized), s.otpCfg.TTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count otp attempts")
	}
	if s.otpCfg.MaxVerifyAttempts > 0 && attempts > int64(s.otpCfg.MaxVerifyAttempts) {
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many verification attempts")
	}

	encoded, err := s.store.Get(ctx, s.store.OTPCodeKey(normalized))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "code expired or never requested")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load otp")
	}

	ok, err := security.VerifyOTP(code, encoded)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify otp")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "incorrect code")
	}

	// One successful use burns the code.
	if err := s.store.Del(ctx, s.store.OTPCodeKey(normalized), s.store.OTPAttemptsKey(normalized)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "burn otp")
	}

	user, err := s.findOrCreateUser(ctx, normalized)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *service) findOrCreateUser(ctx context.Context, phone string) (*models.User, error) {
	user, err := s.repo.GetByPhone(ctx, phone)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	created := &models.User{Phone: phone}
	if err := s.repo.Create(ctx, created); err != nil {
		// A concurrent first login may have won the insert.
		if existing, getErr := s.repo.GetByPhone(ctx, phone); getErr == nil {
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	if s.logg != nil {
		userCtx := s.logg.WithUserID(ctx, created.ID.String())
		s.logg.Info(userCtx, "user registered")
	}
	return created, nil
}

func (s *service) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Phone:  user.Phone,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refresh session")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// Refresh rotates the refresh session and mints a new access token. The
// expired access token is accepted solely to recover its jti.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	newAccess, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: claims.UserID,
		Phone:  claims.Phone,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &TokenPair{AccessToken: newAccess, RefreshToken: newRefresh}, nil
}

// Logout revokes the refresh session tied to the access token.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}
