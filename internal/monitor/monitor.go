// Package monitor drives the polling cycle: sample the sensor source,
// reduce the snapshot, advance the critical-state tracker, and push the
// result to the presentation sink. A failed cycle is skipped, never
// retried early; the fixed interval is itself the retry cadence.
package monitor

import (
	"context"
	"time"

	"codeberg.org/seliv/tempwatch/internal/errors"
	"codeberg.org/seliv/tempwatch/internal/events"
	"codeberg.org/seliv/tempwatch/internal/logger"
	"codeberg.org/seliv/tempwatch/internal/sensor"
	"codeberg.org/seliv/tempwatch/internal/thermal"
	"codeberg.org/seliv/tempwatch/internal/tray"
)

type Config struct {
	Interval      time.Duration
	SampleTimeout time.Duration
	Thresholds    thermal.Thresholds
	Confirmations int
}

// Monitor owns the critical-state map (through the tracker) and is its
// only writer. Cycles never overlap: the next one starts only after the
// previous sink push returned.
type Monitor struct {
	cfg     Config
	source  sensor.Source
	sink    tray.Sink
	journal events.Collector
	tracker *thermal.Tracker

	failures uint64
}

func New(cfg Config, source sensor.Source, sink tray.Sink, journal events.Collector) (*Monitor, error) {
	errFactory := errors.New()

	if cfg.Interval <= 0 {
		return nil, errFactory.WithData(errors.ErrInvalidInterval, cfg.Interval)
	}
	if journal == nil {
		journal = events.Noop()
	}

	return &Monitor{
		cfg:     cfg,
		source:  source,
		sink:    sink,
		journal: journal,
		tracker: thermal.NewTracker(cfg.Thresholds, cfg.Confirmations),
	}, nil
}

// Run executes cycles at the configured interval until ctx is cancelled.
// Cancellation is observed at cycle boundaries, not mid-cycle.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	logger.Info().
		Str("source", m.source.Name()).
		Dur("interval", m.cfg.Interval).
		Msg("Monitoring started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.cycle(ctx)
		}
	}
}

// Failures reports how many cycles were skipped due to source errors.
func (m *Monitor) Failures() uint64 {
	return m.failures
}

func (m *Monitor) cycle(ctx context.Context) {
	sampleCtx := ctx
	if m.cfg.SampleTimeout > 0 {
		var cancel context.CancelFunc
		sampleCtx, cancel = context.WithTimeout(ctx, m.cfg.SampleTimeout)
		defer cancel()
	}

	snapshot, err := m.source.Sample(sampleCtx)
	if err != nil {
		m.skipCycle(ctx, err)
		return
	}

	readings := thermal.Reduce(snapshot)

	var transitions []thermal.Transition
	for _, r := range readings {
		decision := m.tracker.Observe(r)
		if !decision.IsTransition() {
			continue
		}

		transitions = append(transitions, thermal.Transition{Reading: r, Decision: decision})
		m.recordTransition(ctx, r, decision)
	}

	// The sink gets its own copy; the tracker state and readings stay
	// owned by this loop.
	push := make([]thermal.Reading, len(readings))
	copy(push, readings)

	if err := m.sink.Update(push, transitions); err != nil {
		logger.Error().Err(err).Msg("presentation sink update failed")
	}
}

// skipCycle logs the failure and moves on; the sink keeps showing its
// last known state and the next tick retries naturally.
func (m *Monitor) skipCycle(ctx context.Context, err error) {
	m.failures++

	logger.Warn().
		Str("source", m.source.Name()).
		Str("kind", string(sensor.Code(err))).
		Uint64("failures", m.failures).
		Err(err).
		Msg("sample failed, cycle skipped")

	if jerr := m.journal.Record(ctx, events.CycleSkipped(m.source.Name(), sensor.Code(err))); jerr != nil {
		logger.Error().Err(jerr).Msg("failed to record skipped cycle")
	}
}

func (m *Monitor) recordTransition(ctx context.Context, r thermal.Reading, decision thermal.Decision) {
	logger.Info().
		Str("component", r.Key()).
		Str("name", r.Name).
		Str("decision", decision.String()).
		Msg("alert transition")

	if err := m.journal.Record(ctx, events.AlertTransition(r.Key(), r.Name, decision.String(), r.TemperatureC)); err != nil {
		logger.Error().Err(err).Msg("failed to record alert transition")
	}
}
