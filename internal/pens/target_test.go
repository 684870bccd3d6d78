package pens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPenID(t *testing.T) {
	assert.Equal(t, "12", PenID("room_12"))
	assert.Equal(t, "12", PenID("12"))
	assert.Equal(t, "", PenID("room_"))
}

func TestPensTarget(t *testing.T) {
	tests := []struct {
		name     string
		wsBase   string
		token    string
		expected string
	}{
		{"with token", "ws://h", "abc", "ws://h/ws/pens?token=abc"},
		{"trailing slash", "wss://h/", "abc", "wss://h/ws/pens?token=abc"},
		{"escaped token", "ws://h", "a+b/c=", "ws://h/ws/pens?token=a%2Bb%2Fc%3D"},
		{"no token", "ws://h", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PensTarget(tt.wsBase, tt.token))
		})
	}
}

func TestPenTarget(t *testing.T) {
	assert.Equal(t, "ws://h/ws/pens/7?token=abc", PenTarget("ws://h", "room_7", "abc"))
	assert.Equal(t, "ws://h/ws/pens/7?token=abc", PenTarget("ws://h", "7", "abc"))
	assert.Equal(t, "", PenTarget("ws://h", "room_7", ""))
	assert.Equal(t, "", PenTarget("ws://h", "", "abc"))
}
