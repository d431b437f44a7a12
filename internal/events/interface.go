package events

import (
	"context"
	"time"

	"codeberg.org/seliv/tempwatch/internal/errors"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, event *Event) error
	Close() error
}

// Repository defines the interface for event storage
type Repository interface {
	Record(event *Event) error
	Close() error
}

// EventKind distinguishes the journal entry types.
type EventKind string

const (
	KindAlertRaised  EventKind = "alert_raised"
	KindAlertCleared EventKind = "alert_cleared"
	KindCycleSkipped EventKind = "cycle_skipped"
)

// Event is one journal entry: an alert transition or a skipped cycle.
type Event struct {
	Timestamp    time.Time
	Kind         EventKind
	Component    string
	Name         string
	TemperatureC *float64
	Detail       string
}

// AlertTransition builds an event for a raised or cleared alert.
func AlertTransition(component, name, decision string, temperatureC *float64) *Event {
	kind := KindAlertRaised
	if decision == "alert_cleared" {
		kind = KindAlertCleared
	}

	return &Event{
		Timestamp:    time.Now(),
		Kind:         kind,
		Component:    component,
		Name:         name,
		TemperatureC: temperatureC,
	}
}

// CycleSkipped builds an event for a polling cycle lost to a source error.
func CycleSkipped(source string, code errors.ErrorCode) *Event {
	return &Event{
		Timestamp: time.Now(),
		Kind:      KindCycleSkipped,
		Component: source,
		Detail:    string(code),
	}
}
