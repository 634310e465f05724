package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRow(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(Payload{UserID: 7, Username: "alice"})
	require.NoError(t, err)

	t.Run("unexpired row yields its payload", func(t *testing.T) {
		p, err := decodeRow(string(raw), now.Add(time.Hour), now)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, int64(7), p.UserID)
		assert.Equal(t, "alice", p.Username)
	})

	t.Run("row past its expiry reads as absent, not an error", func(t *testing.T) {
		p, err := decodeRow(string(raw), now.Add(-time.Second), now)
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("a full TTL in the past is absent", func(t *testing.T) {
		p, err := decodeRow(string(raw), now.Add(-DefaultTTL), now)
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("expiring exactly now is still valid", func(t *testing.T) {
		p, err := decodeRow(string(raw), now, now)
		require.NoError(t, err)
		assert.NotNil(t, p)
	})

	t.Run("corrupt payload surfaces an error", func(t *testing.T) {
		_, err := decodeRow("{not json", now.Add(time.Hour), now)
		assert.Error(t, err)
	})
}
