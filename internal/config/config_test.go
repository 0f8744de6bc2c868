package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "REPORT_MAX_ENTITIES", "REPORT_LOOKBACK_DAYS", "REPORT_TIMEZONE", "YT_CHANNEL_ID", "UPSTREAM_TIMEOUT_SECONDS", "GIN_MODE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 20, cfg.Report.MaxEntities)
	assert.Equal(t, 28, cfg.Report.LookbackDays)
	assert.Equal(t, 15*time.Second, cfg.YouTube.Timeout)
	assert.Empty(t, cfg.YouTube.FallbackChannelID)
	assert.Equal(t, "release", cfg.Server.GinMode)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REPORT_MAX_ENTITIES", "5")
	t.Setenv("YT_CHANNEL_ID", " UCfallback ")
	t.Setenv("REPORT_TIMEZONE", "Asia/Seoul")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Report.MaxEntities)
	assert.Equal(t, "UCfallback", cfg.YouTube.FallbackChannelID)
	assert.Equal(t, "Asia/Seoul", cfg.Report.Timezone)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("REPORT_MAX_ENTITIES", "0")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("REPORT_MAX_ENTITIES", "")
	t.Setenv("REPORT_TIMEZONE", "Not/AZone")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("REPORT_TIMEZONE", "")
	t.Setenv("GIN_MODE", "verbose")
	_, err = Load()
	require.Error(t, err)
}
