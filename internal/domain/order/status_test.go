package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusRefunded, true},
		{StatusConfirmed, StatusRefunded, false},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusRefunded, StatusConfirmed, false},
		{StatusRefunded, StatusPending, false},
		{StatusConfirmed, StatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusConfirmed.Valid())
	assert.True(t, StatusRefunded.Valid())
	assert.False(t, Status("CANCELLED").Valid())
	assert.False(t, Status("").Valid())
}
