package config

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil))
	require.NoError(t, err)

	assert.Empty(t, cfg.FileSystems)
	assert.Equal(t, 1.0, cfg.Threshold)
	assert.Equal(t, "", cfg.APIEndpoint)
	assert.Equal(t, 60*time.Second, cfg.TriggerInterval)
	assert.Equal(t, time.Hour, cfg.WarningInterval)
	assert.Equal(t, PolicyQuiet, cfg.AlertPolicy)
	assert.Equal(t, SamplerDF, cfg.Sampler)
	assert.Equal(t, "df", cfg.DFBin)
	assert.Equal(t, 60, cfg.HistorySize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestFromEnvValues(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"FILE_SYSTEMS":              " /dev/sda1, ,/dev/sdb2 ",
		"THRESHOLD":                 "80.5",
		"API_ENDPOINT":              "http://hooks.local/x",
		"TRIGGER_INTERVAL":          "5",
		"WARNING_INTERVAL":          "120",
		"DISKWATCH_ALERT_POLICY":    "FIXED",
		"DISKWATCH_SAMPLER":         "partitions",
		"DISKWATCH_ALLOWED_IPS":     "10.0.0.1,10.0.0.2",
		"DISKWATCH_TRUSTED_PROXIES": "10.0.0.0/8, 192.168.1.1",
		"DISKWATCH_HISTORY_SIZE":    "10",
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"/dev/sda1", "/dev/sdb2"}, cfg.FileSystems)
	assert.Equal(t, 80.5, cfg.Threshold)
	assert.Equal(t, "http://hooks.local/x", cfg.APIEndpoint)
	assert.Equal(t, 5*time.Second, cfg.TriggerInterval)
	assert.Equal(t, 2*time.Minute, cfg.WarningInterval)
	assert.Equal(t, PolicyFixed, cfg.AlertPolicy)
	assert.Equal(t, SamplerPartitions, cfg.Sampler)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.AllowedIPs)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.TrustedProxies)
	assert.Equal(t, 10, cfg.HistorySize)
}

func TestFromEnvRejectsMalformed(t *testing.T) {
	cases := map[string]map[string]string{
		"threshold":      {"THRESHOLD": "eighty"},
		"threshold nan":  {"THRESHOLD": "NaN"},
		"threshold inf":  {"THRESHOLD": "Inf"},
		"threshold -inf": {"THRESHOLD": "-inf"},
		"proxies":        {"DISKWATCH_TRUSTED_PROXIES": "10.0.0.0/8,gateway"},
		"trigger":        {"TRIGGER_INTERVAL": "1m"},
		"trigger zero":   {"TRIGGER_INTERVAL": "0"},
		"warning":        {"WARNING_INTERVAL": "-5"},
		"policy":         {"DISKWATCH_ALERT_POLICY": "sometimes"},
		"sampler":        {"DISKWATCH_SAMPLER": "statfs"},
		"history size":   {"DISKWATCH_HISTORY_SIZE": "0"},
		"history parse":  {"DISKWATCH_HISTORY_SIZE": "many"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(lookupFrom(env))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList(" , ,"))
	assert.Equal(t, []string{"a", "b"}, SplitList("a,,b"))
}
