package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KirkDiggler/spinwin/internal/wheel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "REDIS_ADDR", "REDIS_DB", "STORAGE_DRIVER", "DATABASE_URL",
	"WEBHOOK_URL", "WEBHOOK_TIMEOUT_MS", "DISCORD_WEBHOOK_ID", "DISCORD_WEBHOOK_TOKEN",
	"CAMPAIGN_FILE", "SELECTION_POLICY", "FIXED_SLICE", "DUPLICATE_CHECK",
	"SPIN_DURATION_MS", "MIN_TURNS", "MAX_TURNS", "FAKE_ENTRIES", "FAKE_CAP",
	"RATE_LIMIT_RPS", "SESSION_TTL_MIN", "TRUST_PROXY_HEADERS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
	// keep a developer's .env out of the picture
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, StorageRedis, cfg.StorageDriver)
	assert.Equal(t, 5*time.Second, cfg.WebhookTimeout)
	assert.Equal(t, 4*time.Second, cfg.SpinDuration)
	assert.Equal(t, 4, cfg.MinTurns)
	assert.Equal(t, 6, cfg.MaxTurns)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.LeaderboardSize)
	assert.True(t, cfg.FakeEntries)
	assert.Equal(t, 15, cfg.FakeCap)
	assert.Equal(t, 5*time.Second, cfg.FakeInitialDelay)
	assert.Equal(t, 30*time.Second, cfg.FakeMinInterval)
	assert.Equal(t, 60*time.Second, cfg.FakeMaxInterval)
	assert.Equal(t, 1.0, cfg.RateLimitRPS)
	assert.False(t, cfg.TrustProxyHeaders)

	require.NotNil(t, cfg.Campaign)
	assert.Equal(t, wheel.PolicyFixed, cfg.Campaign.Policy)
	assert.Equal(t, 2, cfg.Campaign.FixedSlice)
	assert.True(t, cfg.Campaign.DuplicateCheck)
	assert.Len(t, cfg.Campaign.Slices, 10)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("SELECTION_POLICY", "Weighted")
	t.Setenv("DUPLICATE_CHECK", "false")
	t.Setenv("SPIN_DURATION_MS", "1500")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/spinwin")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, wheel.PolicyWeighted, cfg.Campaign.Policy)
	assert.False(t, cfg.Campaign.DuplicateCheck)
	assert.Equal(t, 1500*time.Millisecond, cfg.SpinDuration)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.True(t, cfg.TrustProxyHeaders)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("MIN_TURNS", "abc")
	t.Setenv("FAKE_ENTRIES", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MinTurns)
	assert.True(t, cfg.FakeEntries)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"STORAGE_DRIVER": "postgres"}},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"half discord config", map[string]string{"DISCORD_WEBHOOK_ID": "123"}},
		{"unknown policy", map[string]string{"SELECTION_POLICY": "rigged"}},
		{"fixed slice out of range", map[string]string{"FIXED_SLICE": "10"}},
		{"missing campaign file", map[string]string{"CAMPAIGN_FILE": "/does/not/exist.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("PORT")
	require.NoError(t, os.WriteFile(".env", []byte("PORT=9090\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
}

const campaignYAML = `
policy: weighted
duplicate_check: false
geometry:
  pointer_deg: 270
  stop_tweak_deg: 5
prizes:
  - id: 1
    name: FREE COFFEE
    color_hint: "#6F4E37"
    weight: 0.9
  - id: 2
    name: FREE LUNCH
    weight: 0.1
slices:
  - prize_id: 1
    label: [FREE, COFFEE]
  - prize_id: 2
    label: [FREE, LUNCH]
  - prize_id: 1
    label: [FREE, COFFEE]
  - prize_id: 1
    label: [FREE, COFFEE]
`

func TestLoadCampaign(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaign.yaml")
	require.NoError(t, os.WriteFile(path, []byte(campaignYAML), 0o600))

	c, err := LoadCampaign(path)
	require.NoError(t, err)

	assert.Equal(t, wheel.PolicyWeighted, c.Policy)
	assert.False(t, c.DuplicateCheck)
	assert.Equal(t, 4, c.Geometry.SliceCount)
	assert.Equal(t, 270.0, c.Geometry.PointerDeg)
	require.Len(t, c.Prizes, 2)
	assert.Equal(t, "FREE COFFEE", c.Prizes[0].Name)
	assert.Equal(t, 0.9, c.Prizes[0].Weight)
	assert.Equal(t, []string{"FREE", "LUNCH"}, c.Slices[1].Label)
	assert.NoError(t, c.Validate())

	policy, err := c.SelectionPolicy()
	require.NoError(t, err)
	assert.Equal(t, wheel.PolicyWeighted, policy.Name())
}

func TestLoadCampaign_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaign.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prizes: {not: [a list"), 0o600))

	_, err := LoadCampaign(path)
	assert.Error(t, err)
}

func TestCampaignValidate(t *testing.T) {
	c := DefaultCampaign()
	assert.NoError(t, c.Validate())

	c.Geometry.SliceCount = 8
	assert.ErrorIs(t, c.Validate(), wheel.ErrSliceCountMismatch)

	c = DefaultCampaign()
	c.Prizes[1].Weight = -1
	assert.ErrorIs(t, c.Validate(), wheel.ErrNegativeWeight)
}
