package sensor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHostKey(t *testing.T) {
	tests := []struct {
		key  string
		kind HardwareKind
	}{
		{"coretemp_core_0", CPU},
		{"k10temp_tctl", CPU},
		{"cpu_thermal", CPU},
		{"acpitz", CPU},
		{"ThermalZone _TZ_0", CPU},
		{"amdgpu_edge", GPU},
		{"nouveau", GPU},
		{"gpu_thermal", GPU},
		{"nvme_composite", Storage},
		{"drivetemp", Storage},
		{"W_D_SSD", Storage},
		{"iwlwifi_1", -1},
		{"battery", -1},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.kind, classifyHostKey(tt.key))
		})
	}
}

func TestClassifyHostKeyStorageWinsOverCPU(t *testing.T) {
	// "nvme_core" contains both a storage and a CPU marker; device keys
	// must stay with the device.
	assert.Equal(t, Storage, classifyHostKey("nvme_core"))
}

func TestCPUSensorLabelCarriesCoreMarker(t *testing.T) {
	for _, key := range []string{"k10temp_tctl", "tdie", "acpitz", "thermalzone _TZ_0"} {
		label := cpuSensorLabel(key)
		assert.Contains(t, strings.ToLower(label), "core", "label for %q", key)
		assert.Contains(t, label, key, "original key stays visible for diagnostics")
	}
}

func TestIgnoredHostKey(t *testing.T) {
	assert.True(t, ignoredHostKey("PMU tcal"))
	assert.True(t, ignoredHostKey("noname"))
	assert.False(t, ignoredHostKey("coretemp_core_0"))
}
