package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{name: "single character prefix", prefix: "m"},
		{name: "multi character prefix", prefix: "vote"},
		{name: "uppercase prefix gets lowercased", prefix: "MSG"},
		{name: "prefix with spaces gets trimmed", prefix: "  msg  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewID(tt.prefix)

			expectedPrefix := strings.ToLower(strings.TrimSpace(tt.prefix)) + "_"
			assert.True(t, strings.HasPrefix(got, expectedPrefix), "NewID() = %v, want prefix %v", got, expectedPrefix)
			assert.True(t, IsValidULID(got), "NewID() should produce a valid prefixed ULID")
		})
	}
}

func TestNewIDUniqueness(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewID("msg")
		_, dup := seen[id]
		assert.False(t, dup, "NewID() produced duplicate: %s", id)
		seen[id] = struct{}{}
	}
}

func TestIsValidULID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{name: "valid prefixed ULID", id: NewID("msg"), valid: true},
		{name: "empty string", id: "", valid: false},
		{name: "missing prefix", id: "_01G0EZ1XTM37C5X11SQTDNCTM1", valid: false},
		{name: "missing separator", id: "msg01G0EZ1XTM37C5X11SQTDNCTM1", valid: false},
		{name: "short ulid part", id: "msg_01G0EZ1", valid: false},
		{name: "uppercase prefix", id: "MSG_01G0EZ1XTM37C5X11SQTDNCTM1", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidULID(tt.id))
		})
	}
}
