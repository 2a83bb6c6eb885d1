package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
	assert.Equal(t, "bob@example.com", NormalizeEmail("bob@example.com"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("alice@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("no-at-sign"))
	assert.Error(t, ValidateEmail("@example.com"))
	assert.Error(t, ValidateEmail("alice@"))
}

func TestSessionExpired(t *testing.T) {
	now := time.Now().UTC()
	session := Session{Token: "tok", UserID: "u", ExpiresAt: now.Add(time.Hour)}

	assert.False(t, session.Expired(now))
	assert.True(t, session.Expired(now.Add(2*time.Hour)))
	assert.True(t, session.Expired(session.ExpiresAt))
}
