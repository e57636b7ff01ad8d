package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogSender_SendOTP(t *testing.T) {
	tests := []struct {
		name     string
		reveal   bool
		wantCode string
	}{
		{"development reveals code", true, "482913"},
		{"production masks code", false, "******"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			s := NewLogSender(zap.New(core), tt.reveal)

			require.NoError(t, s.SendOTP(context.Background(), "asha@example.com", "Asha", "482913"))

			entries := logs.FilterMessage("signup code issued").All()
			require.Len(t, entries, 1)
			fields := entries[0].ContextMap()
			assert.Equal(t, tt.wantCode, fields["code"])
			assert.Equal(t, "a***@example.com", fields["to"])
		})
	}
}

func TestLogSender_Validation(t *testing.T) {
	s := NewLogSender(nil, true)
	assert.Error(t, s.SendOTP(context.Background(), "", "x", "123456"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.SendOTP(ctx, "a@b.co", "x", "123456"), context.Canceled)
}
