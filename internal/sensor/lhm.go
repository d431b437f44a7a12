package sensor

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"

	"codeberg.org/seliv/tempwatch/internal/errors"
)

// LHM samples temperatures through a PowerShell bridge script that loads
// LibreHardwareMonitorLib and prints one JSON snapshot per invocation.
// Reading the library requires an elevated process; a non-elevated run
// surfaces as a permission error.
type LHM struct {
	scriptPath string
	dllPath    string
}

func NewLHM(scriptPath, dllPath string) *LHM {
	return &LHM{scriptPath: scriptPath, dllPath: dllPath}
}

func (*LHM) Name() string {
	return "lhm"
}

func (s *LHM) Sample(ctx context.Context) ([]Hardware, error) {
	errFactory := errors.New()

	if s.scriptPath == "" || s.dllPath == "" {
		return nil, errFactory.WithMessage(ErrUnavailable, "LHM bridge not configured")
	}
	if _, err := os.Stat(s.dllPath); err != nil {
		return nil, errFactory.WithMessage(ErrUnavailable, "LibreHardwareMonitorLib.dll not found").WithData(s.dllPath)
	}

	cmd := exec.CommandContext(ctx, "powershell.exe",
		"-ExecutionPolicy", "Bypass",
		"-NoProfile",
		"-NonInteractive",
		"-File", s.scriptPath,
		"-DllPath", s.dllPath,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, s.classifyExecError(ctx, err, stderr.String())
	}

	return parseSnapshot(out)
}

func (*LHM) classifyExecError(ctx context.Context, err error, stderr string) error {
	errFactory := errors.New()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errFactory.Wrap(ErrSampleTimeout, err)
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return errFactory.WithMessage(ErrUnavailable, "powershell not available").WithData(execErr.Error())
	}

	lower := strings.ToLower(stderr)
	if strings.Contains(lower, "denied") || strings.Contains(lower, "access") {
		return errFactory.WithData(ErrPermissionDenied, strings.TrimSpace(stderr))
	}

	return errFactory.WithData(ErrUnavailable, strings.TrimSpace(stderr))
}

// Bridge output shape. Hardware types follow the LibreHardwareMonitor
// enumeration (Cpu, GpuNvidia, GpuAmd, GpuIntel, Storage, ...).
type lhmSnapshot struct {
	Success  bool          `json:"success"`
	Error    string        `json:"error"`
	Hardware []lhmHardware `json:"hardware"`
}

type lhmHardware struct {
	Type    string      `json:"type"`
	Name    string      `json:"name"`
	Sensors []lhmSensor `json:"sensors"`
}

type lhmSensor struct {
	Type  string   `json:"type"`
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
}

func parseSnapshot(data []byte) ([]Hardware, error) {
	errFactory := errors.New()

	var snap lhmSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errFactory.Wrap(ErrMalformed, err)
	}

	if !snap.Success {
		return nil, errFactory.WithMessage(ErrUnavailable, "bridge reported failure").WithData(snap.Error)
	}

	snapshot := make([]Hardware, 0, len(snap.Hardware))
	for _, hw := range snap.Hardware {
		kind, ok := lhmHardwareKind(hw.Type)
		if !ok {
			continue
		}

		sensors := make([]Sensor, 0, len(hw.Sensors))
		for _, sn := range hw.Sensors {
			sensorKind := Other
			if sn.Type == "Temperature" {
				sensorKind = Temperature
			}
			sensors = append(sensors, Sensor{Kind: sensorKind, Label: sn.Name, Value: sn.Value})
		}

		snapshot = append(snapshot, Hardware{Kind: kind, Name: hw.Name, Sensors: sensors})
	}

	return snapshot, nil
}

func lhmHardwareKind(hardwareType string) (HardwareKind, bool) {
	switch {
	case hardwareType == "Cpu":
		return CPU, true
	case strings.HasPrefix(hardwareType, "Gpu"):
		return GPU, true
	case hardwareType == "Storage":
		return Storage, true
	default:
		return 0, false
	}
}
