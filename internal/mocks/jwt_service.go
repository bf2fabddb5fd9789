package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing.
//
// Without overrides it issues tokens of the form "access:<uuid>" and
// "refresh:<uuid>" and validates them by parsing that form back, so a handler
// round trip works without real signing.
type MockJWTService struct {
	GenerateTokenFn        func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn        func(ctx context.Context, tokenString string) (*auth.Claims, error)
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Err is returned by the Generate methods when set.
	Err error

	mu             sync.Mutex
	GeneratedFor   []uuid.UUID
	ValidatedCalls int
}

var _ auth.JWTService = (*MockJWTService)(nil)

// GenerateToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	m.track(userID)
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return auth.TokenTypeAccess + ":" + userID.String(), nil
}

// ValidateToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	m.countValidate()
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return parseMockToken(tokenString, auth.TokenTypeAccess, auth.ErrInvalidToken)
}

// GenerateRefreshToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, userID)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return auth.TokenTypeRefresh + ":" + userID.String(), nil
}

// ValidateRefreshToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	m.countValidate()
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, tokenString)
	}
	return parseMockToken(tokenString, auth.TokenTypeRefresh, auth.ErrInvalidRefreshToken)
}

func (m *MockJWTService) track(userID uuid.UUID) {
	m.mu.Lock()
	m.GeneratedFor = append(m.GeneratedFor, userID)
	m.mu.Unlock()
}

func (m *MockJWTService) countValidate() {
	m.mu.Lock()
	m.ValidatedCalls++
	m.mu.Unlock()
}

func parseMockToken(token, wantType string, invalid error) (*auth.Claims, error) {
	tokenType, rawID, ok := strings.Cut(token, ":")
	if !ok {
		return nil, invalid
	}
	if tokenType != auth.TokenTypeAccess && tokenType != auth.TokenTypeRefresh {
		return nil, invalid
	}
	if tokenType != wantType {
		return nil, auth.ErrWrongTokenType
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, invalid
	}
	now := time.Now()
	return &auth.Claims{
		UserID:    userID,
		TokenType: tokenType,
		Subject:   userID.String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}, nil
}
