package sensor

import (
	"context"
	"sync"

	"codeberg.org/seliv/tempwatch/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// NVML samples NVIDIA GPU core temperatures directly through NVML. It is
// usable standalone or merged with another source that covers CPU and
// storage. Initialization is lazy so a machine without the NVIDIA driver
// degrades to an unavailable source instead of failing at startup.
type NVML struct {
	mu          sync.Mutex
	initialized bool
}

func NewNVML() *NVML {
	return &NVML{}
}

func (*NVML) Name() string {
	return "nvml"
}

func (s *NVML) Sample(ctx context.Context) ([]Hardware, error) {
	errFactory := errors.New()

	select {
	case <-ctx.Done():
		return nil, errFactory.Wrap(ErrSampleTimeout, ctx.Err())
	default:
	}

	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return nil, errFactory.WithMessage(ErrUnavailable, "failed to count devices").WithData(nvml.ErrorString(ret))
	}

	snapshot := make([]Hardware, 0, count)
	for i := 0; i < count; i++ {
		device, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			continue
		}

		name := "NVIDIA GPU"
		if n, ret := device.GetName(); ret == nvml.SUCCESS {
			name = n
		}

		// A failed temperature read is an absent value, not a failed cycle.
		var value *float64
		if temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU); ret == nvml.SUCCESS {
			value = Float(float64(temp))
		}

		snapshot = append(snapshot, Hardware{
			Kind: GPU,
			Name: name,
			Sensors: []Sensor{
				{Kind: Temperature, Label: "GPU Core", Value: value},
			},
		})
	}

	return snapshot, nil
}

func (s *NVML) ensureInitialized() error {
	errFactory := errors.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return errFactory.WithMessage(ErrUnavailable, "failed to initialize NVML").WithData(nvml.ErrorString(ret))
	}
	s.initialized = true

	return nil
}

// Shutdown releases NVML. Safe to call when initialization never happened.
func (s *NVML) Shutdown() error {
	errFactory := errors.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil
	}

	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		return errFactory.WithData(errors.ErrShutdownFailed, nvml.ErrorString(ret))
	}
	s.initialized = false

	return nil
}
