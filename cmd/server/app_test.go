package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/shastra-reservations/internal/config"
)

func TestSentryOptions(t *testing.T) {
	tests := []struct {
		env   string
		rate  float64
		debug bool
	}{
		{"dev", 1.0, true},
		{"prod", 0.2, false},
		{"Production", 0.2, false},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			opts := sentryOptions(config.Config{Env: tt.env, SentryDSN: "https://key@sentry.example/1"})
			assert.Equal(t, tt.rate, opts.TracesSampleRate)
			assert.Equal(t, tt.debug, opts.Debug)
			assert.Equal(t, tt.env, opts.Environment)
			assert.Equal(t, "https://key@sentry.example/1", opts.Dsn)
		})
	}
}
