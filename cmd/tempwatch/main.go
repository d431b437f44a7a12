package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/seliv/tempwatch/internal/config"
	"codeberg.org/seliv/tempwatch/internal/events"
	"codeberg.org/seliv/tempwatch/internal/logger"
	"codeberg.org/seliv/tempwatch/internal/monitor"
	"codeberg.org/seliv/tempwatch/internal/pid"
	"codeberg.org/seliv/tempwatch/internal/sensor"
	"codeberg.org/seliv/tempwatch/internal/thermal"
	"codeberg.org/seliv/tempwatch/internal/tray"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")

	// Exit only after run returned, so its deferred cleanups (pid file,
	// journal, NVML) always execute.
	if err := run(cfg); err != nil {
		logger.Error().Err(err).Msg("tempwatch failed")
		os.Exit(1)
	}
	logger.Info().Msg("Exiting...")
}

func run(cfg *config.Config) error {
	if err := pid.Write(); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove pid file")
		}
	}()

	source, shutdownSource := buildSource(cfg)
	defer shutdownSource()

	journal, err := events.NewService(events.Config{
		Enabled:      cfg.Events,
		DBPath:       cfg.EventsDB,
		BatchSize:    events.DefaultConfig().BatchSize,
		BatchTimeout: events.DefaultConfig().BatchTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := journal.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event journal")
		}
	}()

	thresholds := thermal.Thresholds{
		CPU: cfg.CPUThreshold,
		GPU: cfg.GPUThreshold,
		SSD: cfg.SSDThreshold,
	}
	sink := tray.NewConsoleSink(thresholds, time.Duration(cfg.Cooldown)*time.Second)

	mon, err := monitor.New(monitor.Config{
		Interval:      time.Duration(cfg.Interval) * time.Second,
		SampleTimeout: time.Duration(cfg.SampleTimeout) * time.Second,
		Thresholds:    thresholds,
		Confirmations: cfg.AlertConfirmations,
	}, source, sink, journal)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	return mon.Run(ctx)
}

// buildSource assembles the sensor source named in the config. "auto"
// merges everything available: LHM when configured, NVML when the
// driver is present, and the OS sensors as a fallback.
func buildSource(cfg *config.Config) (sensor.Source, func()) {
	noShutdown := func() {}

	switch cfg.Source {
	case "lhm":
		return sensor.NewLHM(cfg.LHMScript, cfg.LHMDLL), noShutdown
	case "nvml":
		nv := sensor.NewNVML()
		return nv, func() { shutdownNVML(nv) }
	case "host":
		return sensor.NewHost(), noShutdown
	default:
		nv := sensor.NewNVML()
		sources := []sensor.Source{}
		if cfg.LHMScript != "" && cfg.LHMDLL != "" {
			sources = append(sources, sensor.NewLHM(cfg.LHMScript, cfg.LHMDLL))
		}
		sources = append(sources, nv, sensor.NewHost())
		return sensor.NewMulti(sources...), func() { shutdownNVML(nv) }
	}
}

func shutdownNVML(nv *sensor.NVML) {
	if err := nv.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown NVML")
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
