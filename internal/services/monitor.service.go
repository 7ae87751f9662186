package services

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"diskwatch/internal/config"
	"diskwatch/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrMalformedUsage is returned when a watched filesystem reports a used
// percentage that isn't a number in [0,100]
var ErrMalformedUsage = errors.New("malformed used percentage")

// CycleObserver receives every completed cycle. Implementations must not block.
type CycleObserver interface {
	ObserveCycle(result models.CycleResult)
}

// Monitor runs the sample, evaluate, notify, sleep loop
type Monitor struct {
	sampler   Sampler
	notifier  Notifier
	log       *logrus.Entry
	observers []CycleObserver

	watched         map[string]struct{}
	threshold       float64
	triggerInterval time.Duration
	warningInterval time.Duration
	policy          string

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time

	mu   sync.RWMutex
	last *models.CycleResult
}

// NewMonitor captures cfg once; later environment changes are not observed.
func NewMonitor(cfg *config.Config, sampler Sampler, notifier Notifier, log *logrus.Entry) *Monitor {
	watched := make(map[string]struct{}, len(cfg.FileSystems))
	for _, fs := range cfg.FileSystems {
		watched[fs] = struct{}{}
	}

	return &Monitor{
		sampler:         sampler,
		notifier:        notifier,
		log:             log,
		watched:         watched,
		threshold:       cfg.Threshold,
		triggerInterval: cfg.TriggerInterval,
		warningInterval: cfg.WarningInterval,
		policy:          cfg.AlertPolicy,
		sleep:           sleepContext,
		now:             time.Now,
	}
}

// AddObserver registers o for every cycle completed after this call. Call before Run.
func (m *Monitor) AddObserver(o CycleObserver) {
	m.observers = append(m.observers, o)
}

// Threshold returns the configured used-percentage threshold
func (m *Monitor) Threshold() float64 {
	return m.threshold
}

// Policy returns the alert policy in effect
func (m *Monitor) Policy() string {
	return m.policy
}

// Run loops until ctx is cancelled or a cycle hits a fatal error.
// Cancellation is reported as ctx.Err().
func (m *Monitor) Run(ctx context.Context) error {
	m.log.WithFields(logrus.Fields{
		"filesystems":      len(m.watched),
		"threshold":        m.threshold,
		"policy":           m.policy,
		"trigger_interval": m.triggerInterval,
		"warning_interval": m.warningInterval,
	}).Info("monitor started")

	for {
		result, err := m.RunCycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		m.log.WithFields(logrus.Fields{
			"records":   len(result.Records),
			"watched":   len(result.Watched),
			"alerts":    len(result.Alerts),
			"triggered": result.Triggered,
			"sleep":     result.NextSleep,
		}).Debug("cycle complete")

		if err := m.sleep(ctx, result.NextSleep); err != nil {
			m.log.Info("monitor stopped")
			return err
		}
	}
}

// RunCycle performs one sample/evaluate/notify pass and records the result.
// Delivery failures are logged and kept in the result; sampling and parse
// failures are returned.
func (m *Monitor) RunCycle(ctx context.Context) (models.CycleResult, error) {
	result := models.CycleResult{StartedAt: m.now()}

	records, err := m.sampler.Sample(ctx)
	if err != nil {
		return result, errors.Wrap(err, "failed to sample disk usage")
	}
	result.Records = records

	for _, rec := range records {
		if _, ok := m.watched[rec.Filesystem]; !ok {
			continue
		}

		percent, err := ParseUsedPercent(rec.UsedPercent)
		if err != nil {
			return result, errors.Wrapf(err, "filesystem %s", rec.Filesystem)
		}

		over := percent >= m.threshold
		result.Watched = append(result.Watched, models.WatchedUsage{
			Filesystem:     rec.Filesystem,
			Available:      rec.Available,
			AvailableBytes: rec.AvailableBytes(),
			UsedPercent:    rec.UsedPercent,
			Percent:        percent,
			Over:           over,
		})
		if !over {
			continue
		}

		result.Alerts = append(result.Alerts, m.warn(ctx, rec, percent))
		result.Triggered = true
	}

	result.NextSleep = m.NextInterval(result.Triggered)
	m.record(result)

	return result, nil
}

// NextInterval returns how long to sleep after a cycle
func (m *Monitor) NextInterval(triggered bool) time.Duration {
	if triggered && m.policy == config.PolicyQuiet {
		return m.warningInterval
	}
	return m.triggerInterval
}

// LastCycle returns the most recent cycle, if any
func (m *Monitor) LastCycle() (models.CycleResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.last == nil {
		return models.CycleResult{}, false
	}
	return *m.last, true
}

func (m *Monitor) warn(ctx context.Context, rec models.UsageRecord, percent float64) models.Alert {
	alert := models.Alert{
		Filesystem:  rec.Filesystem,
		UsedPercent: rec.UsedPercent,
		Percent:     percent,
	}

	entry := m.log.WithFields(logrus.Fields{
		"filesystem": rec.Filesystem,
		"used":       rec.UsedPercent,
		"threshold":  m.threshold,
	})

	if err := m.notifier.Notify(ctx, rec.Filesystem, rec.UsedPercent); err != nil {
		entry.WithError(err).Error("failed to deliver warning")
		alert.Error = err.Error()
		return alert
	}

	entry.Warn("filesystem over threshold, warning sent")
	alert.Delivered = true
	return alert
}

func (m *Monitor) record(result models.CycleResult) {
	m.mu.Lock()
	m.last = &result
	m.mu.Unlock()

	for _, o := range m.observers {
		o.ObserveCycle(result)
	}
}

// ParseUsedPercent parses a value such as "87%" into 87
func ParseUsedPercent(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(raw), "%"), 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedUsage, "%q", raw)
	}
	if math.IsNaN(v) || v < 0 || v > 100 {
		return 0, errors.Wrapf(ErrMalformedUsage, "%q out of range", raw)
	}
	return v, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
