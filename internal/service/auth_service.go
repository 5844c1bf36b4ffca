package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/pkg/config"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

// AuthService implements the local passphrase gate for edit mode. There are no
// user accounts: one shared passphrase unlocks a short-lived admin token.
type AuthService struct {
	cfg    config.AdminConfig
	logger *zap.Logger
}

// NewAuthService instantiates AuthService.
func NewAuthService(cfg config.AdminConfig, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{cfg: cfg, logger: logger}
}

// Login verifies the passphrase against the configured bcrypt hash and issues
// an admin token.
func (s *AuthService) Login(ctx context.Context, passphrase string) (*models.AdminTokenResponse, error) {
	if s.cfg.PassphraseHash == "" {
		return nil, appErrors.Clone(appErrors.ErrInternal, "admin passphrase is not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PassphraseHash), []byte(passphrase)); err != nil {
		s.logger.Warn("rejected admin login attempt")
		return nil, appErrors.Clone(appErrors.ErrInvalidPassphrase, "")
	}

	expiry := s.cfg.TokenExpiry
	if expiry <= 0 {
		expiry = 12 * time.Hour
	}
	now := time.Now().UTC()
	claims := models.AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Role: "admin",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.TokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign admin token")
	}

	return &models.AdminTokenResponse{Token: signed, ExpiresIn: int64(expiry.Seconds())}, nil
}

// Verify parses and validates an admin token.
func (s *AuthService) Verify(tokenString string) (*models.AdminClaims, error) {
	claims := &models.AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected token signing method")
		}
		return []byte(s.cfg.TokenSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired admin token")
	}
	return claims, nil
}
