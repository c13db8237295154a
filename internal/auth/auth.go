/*
Package auth implements the stateless bearer-token scheme: short-lived access
tokens, longer-lived refresh tokens carrying the patient's refresh version,
and the verification middleware for protected routes.

Incrementing a patient's refresh version invalidates every refresh token
issued before the increment, because verification compares the embedded
version against the stored one.
*/
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"tensia/internal/config"
)

const issuer = "tensia"

var ErrInvalidToken = errors.New("token inválido o expirado")

// AccessClaims travel inside access tokens.
type AccessClaims struct {
	PatientID int64 `json:"patient_id"`
	jwt.RegisteredClaims
}

// RefreshClaims travel inside refresh tokens. RefreshVersion is copied from
// the patient record at issue time and re-checked on use.
type RefreshClaims struct {
	PatientID      int64 `json:"patient_id"`
	RefreshVersion int   `json:"refresh_version"`
	jwt.RegisteredClaims
}

// TokenPair is what every successful authentication returns.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Manager mints and verifies both token kinds.
type Manager struct {
	secret        []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		secret:        []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}
}

// IssuePair mints a fresh access/refresh pair for the patient. The refresh
// token embeds the patient's current refresh version.
func (m *Manager) IssuePair(patientID int64, refreshVersion int) (TokenPair, error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessClaims{
		PatientID: patientID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	})
	accessToken, err := access.SignedString(m.secret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, &RefreshClaims{
		PatientID:      patientID,
		RefreshVersion: refreshVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	})
	refreshToken, err := refresh.SignedString(m.refreshSecret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccess validates an access token and returns the patient id.
func (m *Manager) VerifyAccess(tokenString string) (int64, error) {
	claims := &AccessClaims{}
	if err := m.parse(tokenString, claims, m.secret); err != nil {
		return 0, err
	}
	return claims.PatientID, nil
}

// VerifyRefresh validates a refresh token against its own secret and returns
// the patient id plus the refresh version embedded at issue time.
func (m *Manager) VerifyRefresh(tokenString string) (int64, int, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenString, claims, m.refreshSecret); err != nil {
		return 0, 0, err
	}
	return claims.PatientID, claims.RefreshVersion, nil
}

func (m *Manager) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// Middleware verifies the Authorization header on protected routes and puts
// the patient id into the echo context under "patient_id".
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Token no provisto"})
			}

			patientID, err := m.VerifyAccess(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				log.Debug().Err(err).Msg("token verification failed")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Token inválido o expirado"})
			}

			c.Set("patient_id", patientID)
			return next(c)
		}
	}
}

// PatientIDFromContext retrieves the id the middleware stored.
func PatientIDFromContext(c echo.Context) (int64, error) {
	id, ok := c.Get("patient_id").(int64)
	if !ok || id == 0 {
		return 0, fmt.Errorf("patient id not found in context")
	}
	return id, nil
}
