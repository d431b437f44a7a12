package tray

import (
	"time"

	"codeberg.org/seliv/tempwatch/internal/logger"
	"codeberg.org/seliv/tempwatch/internal/thermal"
)

// ConsoleSink renders the indicator state through the logger. Raised and
// cleared alerts are logged as they happen; a component that stays
// critical is re-notified once per cooldown period so a long-running
// incident is not silent after the first alert.
type ConsoleSink struct {
	thresholds thermal.Thresholds
	cooldown   time.Duration

	// last notification time per alerting component key
	alerting map[string]time.Time

	now    func() time.Time
	notify func(r thermal.Reading, renewed bool)
}

func NewConsoleSink(thresholds thermal.Thresholds, cooldown time.Duration) *ConsoleSink {
	s := &ConsoleSink{
		thresholds: thresholds,
		cooldown:   cooldown,
		alerting:   make(map[string]time.Time),
		now:        time.Now,
	}
	s.notify = s.logNotification

	return s
}

func (s *ConsoleSink) Update(readings []thermal.Reading, transitions []thermal.Transition) error {
	for _, tr := range transitions {
		key := tr.Reading.Key()

		switch tr.Decision {
		case thermal.AlertRaised:
			s.alerting[key] = s.now()
			s.notify(tr.Reading, false)
		case thermal.AlertCleared:
			delete(s.alerting, key)
			logger.Info().
				Str("component", tr.Reading.Key()).
				Str("name", tr.Reading.Name).
				Msg("temperature back to normal")
		}
	}

	if s.cooldown > 0 {
		s.renotify(readings)
	}

	logger.Info().
		Str("status", Overall(readings, s.thresholds).String()).
		Str("tooltip", Tooltip(readings)).
		Msg("")

	return nil
}

// renotify re-raises the notification for components that stayed in the
// alerting set past the cooldown period.
func (s *ConsoleSink) renotify(readings []thermal.Reading) {
	for _, r := range readings {
		last, ok := s.alerting[r.Key()]
		if !ok {
			continue
		}
		if s.now().Sub(last) >= s.cooldown {
			s.alerting[r.Key()] = s.now()
			s.notify(r, true)
		}
	}
}

func (s *ConsoleSink) logNotification(r thermal.Reading, renewed bool) {
	event := logger.Warn().
		Str("component", r.Key()).
		Str("name", r.Name).
		Float64("threshold_c", s.thresholds.For(r.Component)).
		Bool("renewed", renewed)
	if r.TemperatureC != nil {
		event = event.Float64("temperature_c", *r.TemperatureC)
	}
	event.Msg("critical temperature, check system cooling")
}
