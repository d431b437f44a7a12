// Package tray defines the presentation sink contract: the poll loop
// hands each cycle's readings and alert transitions to a Sink, which
// renders them as an icon, tooltip and notifications. The bundled
// console sink renders through the logger; a real tray integration
// implements the same interface.
package tray

import (
	"fmt"
	"strings"

	"codeberg.org/seliv/tempwatch/internal/thermal"
)

// Sink receives the full set of current readings plus the cycle's alert
// transitions. Update must return within a bounded short duration; an
// implementation that can block indefinitely must hand off internally.
// The slices are the sink's to keep; the poll loop never mutates them
// after the call.
type Sink interface {
	Update(readings []thermal.Reading, transitions []thermal.Transition) error
}

// Status is the display state of a component or of the whole indicator.
type Status int

const (
	StatusNoData Status = iota
	StatusNormal
	StatusWarning
	StatusCritical
)

func (s Status) String() string {
	switch s {
	case StatusNoData:
		return "no-data"
	case StatusNormal:
		return "normal"
	case StatusWarning:
		return "warning"
	case StatusCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Warning starts this many degrees below the critical threshold.
const warningMargin = 10.0

// StatusOf maps one reading onto a display status.
func StatusOf(r thermal.Reading, thresholds thermal.Thresholds) Status {
	if r.TemperatureC == nil {
		return StatusNoData
	}

	limit := thresholds.For(r.Component)
	switch {
	case *r.TemperatureC >= limit:
		return StatusCritical
	case *r.TemperatureC >= limit-warningMargin:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// Focus picks the reading shown on the indicator itself: CPU when it has
// a value, otherwise GPU.
func Focus(readings []thermal.Reading) (thermal.Reading, bool) {
	var gpu thermal.Reading
	var haveGPU bool

	for _, r := range readings {
		switch r.Component {
		case thermal.CPU:
			if r.TemperatureC != nil {
				return r, true
			}
		case thermal.GPU:
			if r.TemperatureC != nil && !haveGPU {
				gpu = r
				haveGPU = true
			}
		}
	}

	return gpu, haveGPU
}

// Overall is the indicator-level status derived from the focus reading.
func Overall(readings []thermal.Reading, thresholds thermal.Thresholds) Status {
	focus, ok := Focus(readings)
	if !ok {
		return StatusNoData
	}

	return StatusOf(focus, thresholds)
}

// Tooltip renders the readings into the hover line, preserving the
// reducer's ordering. Absent values are skipped.
func Tooltip(readings []thermal.Reading) string {
	parts := make([]string, 0, len(readings))
	for _, r := range readings {
		if r.TemperatureC == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %.1f°C", r.Component, *r.TemperatureC))
	}

	if len(parts) == 0 {
		return "No data"
	}

	return strings.Join(parts, " | ")
}
