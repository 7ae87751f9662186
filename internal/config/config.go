// Package config builds the monitor configuration from the process environment.
package config

import (
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// ErrInvalid marks a configuration value that is present but cannot be used.
var ErrInvalid = errors.New("invalid configuration")

const (
	PolicyQuiet = "quiet"
	PolicyFixed = "fixed"

	SamplerDF         = "df"
	SamplerPartitions = "partitions"
)

// Config is read once at startup and never reloaded.
type Config struct {
	FileSystems     []string
	Threshold       float64
	APIEndpoint     string
	TriggerInterval time.Duration
	WarningInterval time.Duration
	AlertPolicy     string

	Sampler string
	DFBin   string

	HTTPAddr       string
	AllowedIPs     []string
	TrustedProxies []string
	AuthSecret     string
	HistorySize    int

	LogLevel  string
	LogFormat string
}

// Load reads a .env file from the working directory when one exists and then
// builds the Config from the environment. Variables already set in the
// environment win over .env entries.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv builds the Config through lookup, which has the signature of os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	threshold, err := strconv.ParseFloat(get("THRESHOLD", "1.0"), 64)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalid, "THRESHOLD: %v", err)
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, errors.Wrapf(ErrInvalid, "THRESHOLD: %v is not a finite number", threshold)
	}

	trigger, err := seconds("TRIGGER_INTERVAL", get("TRIGGER_INTERVAL", "60"))
	if err != nil {
		return nil, err
	}

	warning, err := seconds("WARNING_INTERVAL", get("WARNING_INTERVAL", "3600"))
	if err != nil {
		return nil, err
	}

	policy := strings.ToLower(get("DISKWATCH_ALERT_POLICY", PolicyQuiet))
	if policy != PolicyQuiet && policy != PolicyFixed {
		return nil, errors.Wrapf(ErrInvalid, "DISKWATCH_ALERT_POLICY: unknown policy %q", policy)
	}

	sampler := strings.ToLower(get("DISKWATCH_SAMPLER", SamplerDF))
	if sampler != SamplerDF && sampler != SamplerPartitions {
		return nil, errors.Wrapf(ErrInvalid, "DISKWATCH_SAMPLER: unknown sampler %q", sampler)
	}

	historySize, err := strconv.Atoi(get("DISKWATCH_HISTORY_SIZE", "60"))
	if err != nil || historySize <= 0 {
		return nil, errors.Wrapf(ErrInvalid, "DISKWATCH_HISTORY_SIZE: must be a positive integer")
	}

	proxies := SplitList(get("DISKWATCH_TRUSTED_PROXIES", ""))
	for _, p := range proxies {
		if net.ParseIP(p) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			return nil, errors.Wrapf(ErrInvalid, "DISKWATCH_TRUSTED_PROXIES: %q is not an IP or CIDR", p)
		}
	}

	return &Config{
		FileSystems:     SplitList(get("FILE_SYSTEMS", "")),
		Threshold:       threshold,
		APIEndpoint:     get("API_ENDPOINT", ""),
		TriggerInterval: trigger,
		WarningInterval: warning,
		AlertPolicy:     policy,
		Sampler:         sampler,
		DFBin:           get("DISKWATCH_DF_BIN", "df"),
		HTTPAddr:        get("DISKWATCH_HTTP_ADDR", ""),
		AllowedIPs:      SplitList(get("DISKWATCH_ALLOWED_IPS", "")),
		TrustedProxies:  proxies,
		AuthSecret:      get("DISKWATCH_AUTH_SECRET", ""),
		HistorySize:     historySize,
		LogLevel:        strings.ToLower(get("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(get("LOG_FORMAT", "text")),
	}, nil
}

// SplitList splits a comma-separated value, trimming entries and dropping empty ones.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func seconds(key, raw string) (time.Duration, error) {
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, errors.Wrapf(ErrInvalid, "%s: %q is not a positive number of seconds", key, raw)
	}
	return time.Duration(n) * time.Second, nil
}
