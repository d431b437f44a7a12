package sensor

import (
	"context"
	"strings"

	"codeberg.org/seliv/tempwatch/internal/errors"
	"github.com/shirou/gopsutil/v3/host"
)

// Host samples whatever temperature sensors the operating system exposes
// (WMI thermal zones on Windows, hwmon on Linux) and classifies them into
// CPU, GPU and storage components by sensor key. Keys that cannot be
// classified are dropped rather than guessed.
type Host struct{}

// Sensors with fixed or meaningless values, never worth reporting.
var hostIgnoredKeys = []string{
	"PMU tcal",
	"noname",
}

// Readings outside this range are sentinel values from broken sensors.
const maxPlausibleHostTemp = 200.0

func NewHost() *Host {
	return &Host{}
}

func (*Host) Name() string {
	return "host"
}

func (s *Host) Sample(ctx context.Context) ([]Hardware, error) {
	errFactory := errors.New()

	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errFactory.Wrap(ErrSampleTimeout, err)
		}
		if len(temps) == 0 {
			return nil, errFactory.Wrap(ErrUnavailable, err)
		}
		// Partial reads still carry usable data; log-worthy but not fatal.
	}

	var (
		cpuSensors []Sensor
		gpuSensors []Sensor
		drives     []Hardware
		driveIndex = map[string]int{}
	)

	for _, t := range temps {
		if ignoredHostKey(t.SensorKey) {
			continue
		}
		if t.Temperature <= 0 || t.Temperature > maxPlausibleHostTemp {
			continue
		}

		reading := Sensor{Kind: Temperature, Label: t.SensorKey, Value: Float(t.Temperature)}

		switch classifyHostKey(t.SensorKey) {
		case CPU:
			reading.Label = cpuSensorLabel(t.SensorKey)
			cpuSensors = append(cpuSensors, reading)
		case GPU:
			gpuSensors = append(gpuSensors, reading)
		case Storage:
			// One component per distinct sensor key, so each drive keeps
			// its own identity for tracking.
			idx, ok := driveIndex[t.SensorKey]
			if !ok {
				idx = len(drives)
				driveIndex[t.SensorKey] = idx
				drives = append(drives, Hardware{Kind: Storage, Name: t.SensorKey})
			}
			drives[idx].Sensors = append(drives[idx].Sensors, reading)
		}
	}

	var snapshot []Hardware
	if len(cpuSensors) > 0 {
		snapshot = append(snapshot, Hardware{Kind: CPU, Name: "CPU", Sensors: cpuSensors})
	}
	if len(gpuSensors) > 0 {
		snapshot = append(snapshot, Hardware{Kind: GPU, Name: "GPU", Sensors: gpuSensors})
	}
	snapshot = append(snapshot, drives...)

	if len(snapshot) == 0 {
		return nil, errFactory.WithMessage(ErrUnavailable, "no usable temperature sensors")
	}

	return snapshot, nil
}

// cpuSensorLabel rewrites an OS sensor key into a per-core style label.
// The hottest-core selection downstream keys on a "Core" marker that
// keys like k10temp_tctl or acpitz never carry themselves.
func cpuSensorLabel(key string) string {
	return "Core (" + key + ")"
}

func ignoredHostKey(key string) bool {
	for _, ignored := range hostIgnoredKeys {
		if key == ignored {
			return true
		}
	}

	return false
}

// classifyHostKey maps an OS sensor key to a hardware kind. Returns -1
// for keys that match nothing.
func classifyHostKey(key string) HardwareKind {
	k := strings.ToLower(key)

	switch {
	case containsAny(k, "nvme", "drivetemp", "disk", "ssd", "sata"):
		return Storage
	case containsAny(k, "gpu", "amdgpu", "radeon", "nouveau"):
		return GPU
	case containsAny(k, "coretemp", "core", "cpu", "k10temp", "tctl", "tdie", "package", "acpitz", "thermalzone"):
		return CPU
	default:
		return -1
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
