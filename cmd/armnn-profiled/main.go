// Command armnn-profiled runs the profiling telemetry pipeline standalone,
// listening for a monitor connection and driving a small synthetic
// inference workload so the counter and timeline streams have something
// to report. Mirrors the teacher's cmd/ublk-mem: parse a few flags, wire
// up the service, wait for a shutdown signal, clean up.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	profiling "github.com/ARM-software/armnn-sub019"
	"github.com/ARM-software/armnn-sub019/internal/directory"
	"github.com/ARM-software/armnn-sub019/internal/logging"
)

func main() {
	var (
		addr          = flag.String("addr", "127.0.0.1:7475", "address to listen for the monitor connection on")
		timeline      = flag.Bool("timeline", false, "start with timeline reporting enabled")
		capturePeriod = flag.Duration("capture-period", profiling.DefaultCapturePeriod, "default periodic counter capture period")
		verbose       = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Error("failed to listen", "addr", *addr, "err", err)
		os.Exit(1)
	}
	defer ln.Close()
	logger.Info("listening for monitor connection", "addr", ln.Addr().String())

	opts := profiling.DefaultServiceOptions()
	opts.TimelineEnabled = *timeline
	opts.CapturePeriod = *capturePeriod

	identity := profiling.Identity{
		PackageName:     "armnn",
		SoftwareInfo:    "armnn-profiled/dev",
		HardwareVersion: "generic",
	}

	svc := profiling.NewService(opts, identity, acceptOnce(ln, logger))
	svc.SetReportStructureHook(func(*profiling.Service) error {
		logger.Info("reporting static structure", "backend", "synthetic-workload", "layers_uid", 1, "latency_uid", 2)
		return nil
	})

	workload := newSyntheticWorkload()
	if err := svc.RegisterBackend(workload); err != nil {
		logger.Error("failed to register synthetic workload backend", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go workload.Run(ctx)

	if _, err := svc.Configure(opts); err != nil {
		logger.Error("failed to configure service", "err", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")
	cancel()
	if err := svc.Reset(); err != nil {
		logger.Error("error during shutdown", "err", err)
		os.Exit(1)
	}
}

// acceptOnce returns a ConnectionFactory that accepts the next client off
// ln each time the service needs a connection (initial connect or a
// reconnect after the monitor drops).
func acceptOnce(ln net.Listener, logger *logging.Logger) profiling.ConnectionFactory {
	return func() (profiling.Connection, error) {
		conn, err := ln.Accept()
		if err != nil {
			return nil, err
		}
		logger.WithConnection(conn.RemoteAddr().String()).Info("accepted monitor connection")
		return conn, nil
	}
}

// syntheticWorkload is a BackendContext standing in for the inference
// engine: it registers a handful of counters representative of a
// runtime (layers executed, inference latency) and bumps them on a
// timer so a connected monitor has non-zero telemetry to observe.
type syntheticWorkload struct {
	layersUID  uint16
	latencyUID uint16

	layers    atomic.Uint64
	latencyUs atomic.Uint64
}

func newSyntheticWorkload() *syntheticWorkload {
	return &syntheticWorkload{layersUID: 1, latencyUID: 2}
}

func (w *syntheticWorkload) ID() string { return "synthetic-workload" }

func (w *syntheticWorkload) RegisterCounters(dir *directory.Directory) error {
	if _, err := dir.RegisterCategory("inference"); err != nil && !errors.Is(err, directory.ErrAlreadyRegistered) {
		return err
	}
	counters := []directory.RegisterCounterArgs{
		{
			BackendID:      w.ID(),
			UID:            w.layersUID,
			ParentCategory: "inference",
			Multiplier:     1,
			Name:           "layers_executed",
			Description:    "Cumulative number of network layers executed",
		},
		{
			BackendID:      w.ID(),
			UID:            w.latencyUID,
			ParentCategory: "inference",
			Multiplier:     1,
			Name:           "inference_latency_us",
			Description:    "Latency of the most recently completed inference, in microseconds",
		},
	}
	for _, c := range counters {
		if _, err := dir.RegisterCounter(c); err != nil && !errors.Is(err, directory.ErrAlreadyRegistered) {
			return fmt.Errorf("register counter %q: %w", c.Name, err)
		}
	}
	return nil
}

func (w *syntheticWorkload) GetCounterValue(uid uint16) (uint32, error) {
	switch uid {
	case w.layersUID:
		return uint32(w.layers.Load()), nil
	case w.latencyUID:
		return uint32(w.latencyUs.Load()), nil
	}
	return 0, fmt.Errorf("synthetic-workload: uid %d not owned", uid)
}

// Run simulates inference passes until ctx is cancelled.
func (w *syntheticWorkload) Run(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := w.layers.Add(1)
			w.latencyUs.Store(200 + n%50)
		}
	}
}
