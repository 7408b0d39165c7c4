package activation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a, err := New(" 123 ", "79001234567", "0", "any", "vk")
	require.NoError(t, err)

	assert.Equal(t, "123", a.ProviderID)
	assert.Equal(t, StatusWaitCode, a.Status)
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.True(t, a.IsPending())
	assert.False(t, a.IsTerminal())
	assert.Nil(t, a.FinishedAt)
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", "7900", "0", "any", "vk")
	assert.ErrorIs(t, err, ErrEmptyProviderID)

	_, err = New("1", " ", "0", "any", "vk")
	assert.ErrorIs(t, err, ErrEmptyPhone)

	_, err = New("1", "7900", "0", "any", "")
	assert.ErrorIs(t, err, ErrEmptyService)
}

func TestApply(t *testing.T) {
	a, err := New("1", "7900", "0", "any", "vk")
	require.NoError(t, err)

	require.NoError(t, a.Apply(StatusOK, "4321"))
	assert.Equal(t, StatusOK, a.Status)
	assert.Equal(t, "4321", a.Code)
	assert.False(t, a.IsPending())

	require.NoError(t, a.Apply(StatusWaitResend, ""))
	assert.Equal(t, "4321", a.Code, "empty code keeps the previous one")
	assert.True(t, a.IsPending())

	require.NoError(t, a.Apply(StatusFinished, ""))
	assert.True(t, a.IsTerminal())
	require.NotNil(t, a.FinishedAt)

	assert.NoError(t, a.Apply(StatusFinished, ""), "re-applying the terminal status is a no-op")
	assert.ErrorIs(t, a.Apply(StatusWaitCode, ""), ErrTerminal)
	assert.Equal(t, StatusFinished, a.Status)
}
