package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vladimiradmaev/health-records/internal/config"
)

func TestMaskToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "<not set>"},
		{"short", "***"},
		{"12345678", "***"},
		{"1234567890abcdef", "1234...cdef"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, maskToken(tt.in), tt.in)
	}
}

func TestPrintConfigMasksSecrets(t *testing.T) {
	c := &config.Config{
		TelegramToken: "bot-token-1234567890",
		Auth: config.AuthConfig{
			JWTSecret: "super-secret-signing-key",
		},
		Assist: config.AssistConfig{AITimeout: 30 * time.Second},
	}

	var buf bytes.Buffer
	printConfig(&buf, c)

	out := buf.String()
	assert.NotContains(t, out, "super-secret-signing-key")
	assert.NotContains(t, out, "bot-token-1234567890")
	assert.Contains(t, out, "supe...-key")
	assert.Contains(t, out, "Redis: <disabled>")
}
