// Package sensor defines the raw snapshot model shared by all temperature
// sources and the Source interface the poll loop samples from. A source is
// an opaque collaborator: it returns named hardware components with their
// sensor readings, or a coded error describing why sampling failed.
package sensor

import "context"

// HardwareKind classifies a hardware component.
type HardwareKind int

const (
	CPU HardwareKind = iota
	GPU
	Storage
)

func (k HardwareKind) String() string {
	switch k {
	case CPU:
		return "cpu"
	case GPU:
		return "gpu"
	case Storage:
		return "storage"
	default:
		return "unknown"
	}
}

// SensorKind classifies an individual sensor on a component.
type SensorKind int

const (
	Temperature SensorKind = iota
	Other
)

// Sensor is a single reading. Value is nil when the sensor reported no
// data this cycle; that is a normal absence, not an error.
type Sensor struct {
	Kind  SensorKind
	Label string
	Value *float64
}

// Hardware is one component in a snapshot, produced fresh each poll.
type Hardware struct {
	Kind    HardwareKind
	Name    string
	Sensors []Sensor
}

// Source produces point-in-time snapshots of hardware sensor readings.
type Source interface {
	// Sample returns a snapshot of all hardware the source can see.
	// The call must respect ctx; expiry is reported as a sample timeout.
	Sample(ctx context.Context) ([]Hardware, error)

	// Name identifies the source in logs and diagnostics.
	Name() string
}

// Float returns a pointer to v, for building sensor values in place.
func Float(v float64) *float64 {
	return &v
}
