package mocks

import (
	"errors"
	"strings"
	"sync"

	"github.com/hanxue/hanxue-api/internal/service/auth"
)

// ErrPasswordMismatch is returned by MockPasswordVerifier on a mismatch.
var ErrPasswordMismatch = errors.New("password mismatch")

// MockPasswordVerifier implements auth.PasswordVerifier for testing.
//
// By default it accepts a password when the hash equals HashPrefix+password,
// matching what MockUserStore stores.
type MockPasswordVerifier struct {
	CompareFn func(hashedPassword, password string) error

	mu    sync.Mutex
	Calls []string // hashed passwords in call order
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

// Compare implements the auth.PasswordVerifier interface
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, hashedPassword)
	m.mu.Unlock()

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if strings.TrimPrefix(hashedPassword, HashPrefix) == password &&
		strings.HasPrefix(hashedPassword, HashPrefix) {
		return nil
	}
	return ErrPasswordMismatch
}

// CallCount reports how many comparisons were made.
func (m *MockPasswordVerifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
