// Package thermal is the sampling-and-alerting core: it reduces raw
// sensor snapshots to one reading per logical component and tracks
// critical-state persistence across polling cycles so that only a
// sustained critical temperature raises an alert.
package thermal

import (
	"math"
	"strings"

	"codeberg.org/seliv/tempwatch/internal/sensor"
)

// Component identifies a logical component class.
type Component int

const (
	CPU Component = iota
	GPU
	SSD
)

func (c Component) String() string {
	switch c {
	case CPU:
		return "CPU"
	case GPU:
		return "GPU"
	case SSD:
		return "SSD"
	default:
		return "unknown"
	}
}

// Reading is the reduced, per-cycle value for one logical component.
// TemperatureC is nil when the component reported nothing this cycle.
type Reading struct {
	Component    Component
	Name         string
	TemperatureC *float64
}

// Key returns the tracking identity of the component. CPU and GPU are
// singletons; storage devices are keyed by name so each drive keeps its
// own critical-state history.
func (r Reading) Key() string {
	switch r.Component {
	case CPU:
		return "cpu"
	case GPU:
		return "gpu"
	default:
		return "ssd/" + r.Name
	}
}

const (
	// Per-core CPU temperature sensors carry a "core" marker in their
	// label ("CPU Core #1", "coretemp", ...), regardless of vendor.
	coreLabelMarker = "core"

	// GPU readings at or above this are sentinel values, not temperatures.
	maxPlausibleGPUTemp = 150.0
)

// Reduce collapses a raw snapshot into exactly one CPU reading, exactly
// one GPU reading, and one reading per storage device that reported a
// temperature, in that order. The CPU and GPU readings are emitted even
// when no hardware of that kind appears; their value is then absent, so
// the tracker sees the component go missing instead of going silent.
// The input is not mutated.
func Reduce(snapshot []sensor.Hardware) []Reading {
	readings := make([]Reading, 0, len(snapshot)+2)

	readings = append(readings, reduceCPU(snapshot))
	readings = append(readings, reduceGPU(snapshot))
	readings = append(readings, reduceStorage(snapshot)...)

	return readings
}

// reduceCPU takes the maximum over all per-core temperature sensors
// across all CPU hardware entries. The hottest core is the signal that
// matters for throttling, so max, not average.
func reduceCPU(snapshot []sensor.Hardware) Reading {
	r := Reading{Component: CPU, Name: "CPU"}

	var (
		named   bool
		maxTemp float64
		haveVal bool
	)

	for _, hw := range snapshot {
		if hw.Kind != sensor.CPU {
			continue
		}
		if !named {
			r.Name = hw.Name
			named = true
		}

		for _, sn := range hw.Sensors {
			if sn.Kind != sensor.Temperature || sn.Value == nil {
				continue
			}
			if !strings.Contains(strings.ToLower(sn.Label), coreLabelMarker) {
				continue
			}
			if !haveVal || *sn.Value > maxTemp {
				maxTemp = *sn.Value
				haveVal = true
			}
		}
	}

	if haveVal {
		r.TemperatureC = sensor.Float(round1(maxTemp))
	}

	return r
}

// reduceGPU takes the maximum plausible temperature across all GPU
// hardware entries, vendor-agnostic.
func reduceGPU(snapshot []sensor.Hardware) Reading {
	r := Reading{Component: GPU, Name: "GPU"}

	var (
		named   bool
		maxTemp float64
		haveVal bool
	)

	for _, hw := range snapshot {
		if hw.Kind != sensor.GPU {
			continue
		}
		if !named {
			r.Name = hw.Name
			named = true
		}

		for _, sn := range hw.Sensors {
			if sn.Kind != sensor.Temperature || sn.Value == nil {
				continue
			}
			if *sn.Value >= maxPlausibleGPUTemp {
				continue
			}
			if !haveVal || *sn.Value > maxTemp {
				maxTemp = *sn.Value
				haveVal = true
			}
		}
	}

	if haveVal {
		r.TemperatureC = sensor.Float(round1(maxTemp))
	}

	return r
}

// reduceStorage takes the first temperature sensor with a value on each
// storage device; remaining sensors on that device are ignored. Devices
// with no temperature are omitted entirely.
//
// First-match-wins is deliberately different from the max policy used
// for CPU and GPU and is preserved as-is; see the reducer tests.
func reduceStorage(snapshot []sensor.Hardware) []Reading {
	var readings []Reading

	for _, hw := range snapshot {
		if hw.Kind != sensor.Storage {
			continue
		}

		for _, sn := range hw.Sensors {
			if sn.Kind != sensor.Temperature || sn.Value == nil {
				continue
			}
			readings = append(readings, Reading{
				Component:    SSD,
				Name:         hw.Name,
				TemperatureC: sensor.Float(round1(*sn.Value)),
			})
			break
		}
	}

	return readings
}

// round1 rounds to one decimal place. Done at selection time because
// downstream comparisons operate on the rounded value.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
