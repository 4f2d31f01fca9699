package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"cluster-service/cluster"
	"cluster-service/display"
	"cluster-service/telemetry"

	"github.com/brutella/can"
	"github.com/go-redis/redis/v8"
)

const (
	redisHealthCheckInterval = 30 * time.Second
	staleCheckInterval       = 500 * time.Millisecond
)

// ClusterApp owns the display surface, the mapper and everything feeding it
type ClusterApp struct {
	log     *LeveledLogger
	redis   *redis.Client
	doc     *display.Document
	mapper  *cluster.Mapper
	ipcRx   *IPCRx
	ipcTx   *IPCTx
	battery *Battery
	diag    *Diag
	bus     *can.Bus
	decoder telemetry.Decoder
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	stale   bool
}

func NewClusterApp(opts *Options) (*ClusterApp, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &ClusterApp{
		log:    NewLeveledLogger(log.New(log.Writer(), fmt.Sprintf("%s: ", ProjectName), log.LstdFlags), opts.LogLevel),
		ctx:    ctx,
		cancel: cancel,
	}

	// Initialize Redis client with timeouts
	app.redis = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", opts.RedisServerAddr, opts.RedisServerPort),
		Password:     "",
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
	defer connectCancel()

	app.log.Info("Connecting to Redis at %s:%d...", opts.RedisServerAddr, opts.RedisServerPort)

	if err := app.redis.Ping(connectCtx).Err(); err != nil {
		app.Destroy()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.log.Info("Successfully connected to Redis")

	app.diag = NewDiag(app.log, app.redis)

	// Bind the mapper before anything can feed it; a surface missing a
	// target is a startup error
	app.doc = display.NewClusterDocument()
	mapper, err := cluster.New(app.doc, cluster.Config{
		Logger:   app.log,
		Warnings: app.diag,
	})
	if err != nil {
		app.Destroy()
		return nil, fmt.Errorf("failed to bind display: %w", err)
	}
	app.mapper = mapper

	app.ipcTx = NewIPCTx(app.log, app.redis, app.doc)

	app.mapper.Init()
	if opts.SpeedMode != cluster.SpeedModeKMH {
		app.mapper.SetSpeedMode(opts.SpeedMode)
	}

	if err := app.ipcTx.SyncAll(); err != nil {
		app.log.Warn("Failed to write initial dashboard state: %v", err)
	}
	app.log.Info("Display mirror initialized")

	app.battery = NewBattery(app.log)

	if opts.CANDevice != "" {
		if err := app.startCAN(opts); err != nil {
			app.Destroy()
			return nil, err
		}
	} else {
		app.log.Info("CAN decoder disabled")
	}

	app.ipcRx, err = NewIPCRx(app.log, app.redis, app.mapper, app.battery)
	if err != nil {
		app.Destroy()
		return nil, fmt.Errorf("failed to initialize IPC RX: %w", err)
	}
	app.log.Info("IPC RX component initialized")

	go app.redisHealthCheck()

	return app, nil
}

func (app *ClusterApp) startCAN(opts *Options) error {
	bus, err := can.NewBusForInterfaceWithName(opts.CANDevice)
	if err != nil {
		return fmt.Errorf("failed to initialize CAN bus: %w", err)
	}
	app.bus = bus

	app.decoder, err = telemetry.NewDecoder(opts.ECUType, app.mapper, app.log)
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	app.log.Info("CAN decoder initialized - selected ECU type: %s", opts.ECUType)

	bus.Subscribe(&frameHandler{app: app})

	go func() {
		if err := bus.ConnectAndPublish(); err != nil {
			app.log.Error("CAN bus publish error: %v", err)
		}
	}()

	go app.staleCheck()

	return nil
}

// Document returns the display surface the mapper writes to
func (app *ClusterApp) Document() *display.Document {
	return app.doc
}

// Frame handler for CAN messages
type frameHandler struct {
	app *ClusterApp
}

func (h *frameHandler) Handle(frame can.Frame) {
	if err := h.app.decoder.HandleFrame(frame); err != nil {
		h.app.log.Error("Error handling CAN frame: %v", err)
		return
	}

	h.app.diag.SetFaults(h.app.decoder.ActiveFaults())
}

// staleCheck zeroes speed and RPM once when the controller goes quiet
func (app *ClusterApp) staleCheck() {
	ticker := time.NewTicker(staleCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			stale := app.decoder.IsDataStale()

			app.mu.Lock()
			changed := stale != app.stale
			app.stale = stale
			app.mu.Unlock()

			if !changed {
				continue
			}
			if stale {
				app.log.Warn("No CAN frames for %v, clearing speed and RPM", telemetry.DataTimeout)
				app.mapper.SetSpeed(0)
				app.mapper.SetRPM(0)
			} else {
				app.log.Info("CAN data resumed")
			}
		}
	}
}

func (app *ClusterApp) redisHealthCheck() {
	ticker := time.NewTicker(redisHealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(app.ctx, 2*time.Second)
			if err := app.redis.Ping(ctx).Err(); err != nil {
				app.log.Error("Redis health check failed: %v", err)
			}
			cancel()
		}
	}
}

func (app *ClusterApp) Destroy() {
	app.mu.Lock()
	defer app.mu.Unlock()

	app.log.Info("Shutting down cluster application...")

	if app.cancel != nil {
		app.cancel()
	}

	if app.ipcRx != nil {
		app.ipcRx.Destroy()
		app.ipcRx = nil
		app.log.Info("IPC RX shutdown complete")
	}

	if app.bus != nil {
		if err := app.bus.Disconnect(); err != nil {
			app.log.Warn("Error closing CAN bus: %v", err)
		}
		app.bus = nil
		app.log.Info("CAN bus shutdown complete")
	}

	if app.battery != nil {
		app.battery.Destroy()
		app.battery = nil
	}

	if app.ipcTx != nil {
		app.ipcTx.Destroy()
		app.ipcTx = nil
		app.log.Info("IPC TX shutdown complete")
	}

	if app.diag != nil {
		app.diag.Destroy()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.log.Error("Error closing Redis connection: %v", err)
		} else {
			app.log.Info("Redis connection closed")
		}
	}

	app.log.Info("Cluster application shutdown complete")
}
