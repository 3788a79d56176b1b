package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/health-records/internal/domain"
)

func TestManagerStates(t *testing.T) {
	m := NewManager(time.Minute)

	assert.Equal(t, None, m.GetUserState(1))
	m.SetUserState(1, WaitingForDietName)
	assert.Equal(t, WaitingForDietName, m.GetUserState(1))
	m.ClearUserState(1)
	assert.Equal(t, None, m.GetUserState(1))

	m.SetTempData(1, KeyDietType, "symptom")
	assert.Equal(t, "symptom", TempString(m, 1, KeyDietType))
	assert.Equal(t, "", TempString(m, 2, KeyDietType))
	m.ClearTempData(1)
	_, ok := m.GetTempData(1, KeyDietType)
	assert.False(t, ok)
}

func TestGuardRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	m := NewManager(time.Minute)
	key := ActionKey("acc", "confirm_dose", "v1")

	done, err := m.Begin(ctx, key)
	require.NoError(t, err)

	_, err = m.Begin(ctx, key)
	assert.ErrorIs(t, err, domain.ErrActionInFlight)

	other, err := m.Begin(ctx, ActionKey("acc", "confirm_dose", "v2"))
	require.NoError(t, err)
	other()

	done()
	done()
	again, err := m.Begin(ctx, key)
	require.NoError(t, err)
	again()
}

func TestGuardClaimExpires(t *testing.T) {
	ctx := context.Background()
	m := NewManager(10 * time.Millisecond)

	stale, err := m.Begin(ctx, "k")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	fresh, err := m.Begin(ctx, "k")
	require.NoError(t, err)

	stale()
	_, err = m.Begin(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrActionInFlight, "a stale release must not free a newer claim")
	fresh()
}
