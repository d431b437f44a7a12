package thermal_test

import (
	"testing"

	"codeberg.org/seliv/tempwatch/internal/sensor"
	"codeberg.org/seliv/tempwatch/internal/thermal"
	"github.com/stretchr/testify/assert"
)

func defaultThresholds() thermal.Thresholds {
	return thermal.Thresholds{CPU: 90, GPU: 85, SSD: 70}
}

func cpuReading(temp *float64) thermal.Reading {
	return thermal.Reading{Component: thermal.CPU, Name: "CPU", TemperatureC: temp}
}

func observeCPUSequence(t *testing.T, tracker *thermal.Tracker, temps []*float64) []thermal.Decision {
	t.Helper()
	decisions := make([]thermal.Decision, 0, len(temps))
	for _, temp := range temps {
		decisions = append(decisions, tracker.Observe(cpuReading(temp)))
	}
	return decisions
}

func TestTrackerConfirmedCriticalRaisesThenClears(t *testing.T) {
	tracker := thermal.NewTracker(defaultThresholds(), 2)

	decisions := observeCPUSequence(t, tracker, []*float64{
		sensor.Float(91), sensor.Float(91), sensor.Float(70),
	})

	assert.Equal(t, []thermal.Decision{thermal.NoAlert, thermal.AlertRaised, thermal.AlertCleared}, decisions)
	assert.Equal(t, thermal.State{}, tracker.StateFor("cpu"))
}

func TestTrackerSingleCycleSpikeNeverAlerts(t *testing.T) {
	tracker := thermal.NewTracker(defaultThresholds(), 2)

	decisions := observeCPUSequence(t, tracker, []*float64{
		sensor.Float(91), sensor.Float(70),
	})

	assert.Equal(t, []thermal.Decision{thermal.NoAlert, thermal.StillNormal}, decisions)
	assert.False(t, tracker.StateFor("cpu").Alerting)
}

func TestTrackerMissingReadingResetsAndClears(t *testing.T) {
	tracker := thermal.NewTracker(defaultThresholds(), 2)

	observeCPUSequence(t, tracker, []*float64{sensor.Float(95), sensor.Float(95)})
	assert.True(t, tracker.StateFor("cpu").Alerting)

	decision := tracker.Observe(cpuReading(nil))

	assert.Equal(t, thermal.AlertCleared, decision)
	assert.Equal(t, thermal.State{}, tracker.StateFor("cpu"))
}

func TestTrackerMissingReadingWithoutAlertIsNoAlert(t *testing.T) {
	tracker := thermal.NewTracker(defaultThresholds(), 2)

	tracker.Observe(cpuReading(sensor.Float(95)))
	decision := tracker.Observe(cpuReading(nil))

	assert.Equal(t, thermal.NoAlert, decision, "a missing reading is unknown, not normal")
	assert.Equal(t, thermal.State{}, tracker.StateFor("cpu"))
}

func TestTrackerNonCriticalIdempotence(t *testing.T) {
	tracker := thermal.NewTracker(defaultThresholds(), 2)

	for i := 0; i < 50; i++ {
		decision := tracker.Observe(cpuReading(sensor.Float(55)))
		assert.Equal(t, thermal.StillNormal, decision)
	}

	assert.Equal(t, thermal.State{}, tracker.StateFor("cpu"))
}

func TestTrackerComponentIndependence(t *testing.T) {
	tracker := thermal.NewTracker(defaultThresholds(), 2)

	gpu := thermal.Reading{Component: thermal.GPU, Name: "GPU", TemperatureC: sensor.Float(60)}
	ssd := thermal.Reading{Component: thermal.SSD, Name: "Drive A", TemperatureC: sensor.Float(40)}

	for i := 0; i < 3; i++ {
		tracker.Observe(cpuReading(sensor.Float(95)))
		tracker.Observe(gpu)
		tracker.Observe(ssd)
	}

	assert.True(t, tracker.StateFor("cpu").Alerting)
	assert.Equal(t, thermal.State{}, tracker.StateFor("gpu"))
	assert.Equal(t, thermal.State{}, tracker.StateFor("ssd/Drive A"))
}

func TestTrackerStorageDevicesTrackedByName(t *testing.T) {
	tracker := thermal.NewTracker(defaultThresholds(), 2)

	hot := thermal.Reading{Component: thermal.SSD, Name: "Drive A", TemperatureC: sensor.Float(75)}
	cool := thermal.Reading{Component: thermal.SSD, Name: "Drive B", TemperatureC: sensor.Float(35)}

	tracker.Observe(hot)
	tracker.Observe(cool)
	decisionHot := tracker.Observe(hot)
	decisionCool := tracker.Observe(cool)

	assert.Equal(t, thermal.AlertRaised, decisionHot)
	assert.Equal(t, thermal.StillNormal, decisionCool)
	assert.True(t, tracker.StateFor("ssd/Drive A").Alerting)
	assert.False(t, tracker.StateFor("ssd/Drive B").Alerting)
}

func TestTrackerEndToEndScenario(t *testing.T) {
	tracker := thermal.NewTracker(defaultThresholds(), 2)

	decisions := observeCPUSequence(t, tracker, []*float64{
		sensor.Float(95), sensor.Float(96), sensor.Float(96), sensor.Float(80),
	})

	assert.Equal(t, []thermal.Decision{
		thermal.NoAlert,
		thermal.AlertRaised,
		thermal.StillAlerting,
		thermal.AlertCleared,
	}, decisions)
	assert.Equal(t, thermal.State{ConsecutiveCritical: 0, Alerting: false}, tracker.StateFor("cpu"))
}

func TestTrackerThresholdBoundaryIsCritical(t *testing.T) {
	tracker := thermal.NewTracker(defaultThresholds(), 2)

	decisions := observeCPUSequence(t, tracker, []*float64{
		sensor.Float(90), sensor.Float(90),
	})

	assert.Equal(t, []thermal.Decision{thermal.NoAlert, thermal.AlertRaised}, decisions)
}

func TestTrackerConfigurableConfirmations(t *testing.T) {
	tracker := thermal.NewTracker(defaultThresholds(), 3)

	decisions := observeCPUSequence(t, tracker, []*float64{
		sensor.Float(95), sensor.Float(95), sensor.Float(95),
	})

	assert.Equal(t, []thermal.Decision{thermal.NoAlert, thermal.NoAlert, thermal.AlertRaised}, decisions)
}

func TestTrackerInvalidConfirmationsFallsBackToDefault(t *testing.T) {
	tracker := thermal.NewTracker(defaultThresholds(), 0)

	decisions := observeCPUSequence(t, tracker, []*float64{
		sensor.Float(95), sensor.Float(95),
	})

	assert.Equal(t, []thermal.Decision{thermal.NoAlert, thermal.AlertRaised}, decisions)
}

func TestTrackerStillAlertingKeepsCounting(t *testing.T) {
	tracker := thermal.NewTracker(defaultThresholds(), 2)

	observeCPUSequence(t, tracker, []*float64{sensor.Float(95), sensor.Float(95), sensor.Float(95)})

	state := tracker.StateFor("cpu")
	assert.True(t, state.Alerting)
	assert.Equal(t, 3, state.ConsecutiveCritical)
}

func TestThresholdsFor(t *testing.T) {
	th := defaultThresholds()
	assert.InDelta(t, 90, th.For(thermal.CPU), 0.001)
	assert.InDelta(t, 85, th.For(thermal.GPU), 0.001)
	assert.InDelta(t, 70, th.For(thermal.SSD), 0.001)
}
