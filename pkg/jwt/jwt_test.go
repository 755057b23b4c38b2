package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour)
	team := uint(3)

	token, err := m.GenerateToken(7, "leader-a", "team_leader", &team, "v1")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "leader-a", claims.Username)
	assert.Equal(t, "team_leader", claims.Role)
	require.NotNil(t, claims.TeamID)
	assert.Equal(t, team, *claims.TeamID)
	assert.Equal(t, "v1", claims.TokenVersion)
}

func TestManager_RejectsForeignSecret(t *testing.T) {
	token, err := NewManager("one", time.Hour).GenerateToken(1, "u", "admin", nil, "v")
	require.NoError(t, err)

	_, err = NewManager("two", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RejectsExpired(t *testing.T) {
	m := &Manager{secret: []byte("s"), ttl: -time.Minute}
	token, err := m.GenerateToken(1, "u", "admin", nil, "v")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
