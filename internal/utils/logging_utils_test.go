package utils

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMessageFields(t *testing.T) {
	hook := test.NewGlobal()
	t.Cleanup(hook.Reset)
	t.Setenv("SERVICE_NAME", "")

	LogMessage("warn", "Server shutting down...")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.WarnLevel, entry.Level)
	assert.Equal(t, "Server shutting down...", entry.Message)
	assert.Equal(t, "account-core", entry.Data["service"])
	assert.NotContains(t, entry.Data, "traceId")

	ctx := context.WithValue(context.Background(), TraceIdKey, "trace-1")
	LogMessageWithFields(ctx, "info", "Returning response")

	entry = hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "trace-1", entry.Data["traceId"])
	assert.Equal(t, "account-core", entry.Data["service"])
}
