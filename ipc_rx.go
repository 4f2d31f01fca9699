package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cluster-service/telemetry"

	"github.com/go-redis/redis/v8"
)

// IPCRx feeds the cluster from redis hashes and their notification channels
type IPCRx struct {
	log     *LeveledLogger
	redis   *redis.Client
	sink    telemetry.Sink
	battery *Battery
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc

	subscriptions []*redis.PubSub
}

func NewIPCRx(logger *LeveledLogger, redis *redis.Client, sink telemetry.Sink, battery *Battery) (*IPCRx, error) {
	ctx, cancel := context.WithCancel(context.Background())

	rx := &IPCRx{
		log:     logger,
		redis:   redis,
		sink:    sink,
		battery: battery,
		ctx:     ctx,
		cancel:  cancel,
	}

	if err := rx.setupSubscriptions(); err != nil {
		rx.Destroy()
		return nil, fmt.Errorf("failed to setup subscriptions: %w", err)
	}

	rx.readInitialStates()

	return rx, nil
}

func (rx *IPCRx) setupSubscriptions() error {
	handlers := map[string]func(payload string){
		redisClusterKey: rx.handleClusterMessage,
		redisVehicleKey: func(string) { rx.refreshVehicle() },
		redisEngineKey:  func(string) { rx.refreshEngine() },
	}
	for i := 0; i < BatteryCount; i++ {
		idx := i
		handlers[redisBatteryKey(idx)] = func(string) { rx.refreshBattery(idx) }
	}

	for channel, handle := range handlers {
		sub := rx.redis.Subscribe(rx.ctx, channel)
		// Wait for the confirmation so no update between subscribe and the
		// initial read is lost
		if _, err := sub.Receive(rx.ctx); err != nil {
			sub.Close()
			return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		rx.mu.Lock()
		rx.subscriptions = append(rx.subscriptions, sub)
		rx.mu.Unlock()

		go rx.handleSubscription(channel, sub, handle)
	}
	return nil
}

func (rx *IPCRx) handleSubscription(channel string, sub *redis.PubSub, handle func(payload string)) {
	rx.log.Info("Starting %s subscription handler", channel)

	for {
		msg, err := sub.Receive(rx.ctx)
		if err != nil {
			if rx.ctx.Err() != nil {
				return
			}
			// Check for closed client - panic to trigger systemd restart
			if errors.Is(err, redis.ErrClosed) {
				rx.log.Error("Redis connection lost on %s subscription - restarting service", channel)
				panic("Redis disconnected")
			}
			rx.log.Error("%s subscription error: %v", channel, err)
			continue
		}

		switch m := msg.(type) {
		case *redis.Message:
			rx.log.Debug("Message received: channel=%s, payload=%s", m.Channel, m.Payload)
			handle(m.Payload)
		case *redis.Subscription:
			rx.log.Debug("Subscription event: %s %s", m.Channel, m.Kind)
		}
	}
}

// handleClusterMessage applies the field named in payload, or the whole
// hash when payload is empty
func (rx *IPCRx) handleClusterMessage(payload string) {
	if payload == "" {
		rx.reloadCluster()
		return
	}

	value, err := rx.redis.HGet(rx.ctx, redisClusterKey, payload).Result()
	if err == redis.Nil {
		rx.log.Debug("Cluster field %s not set", payload)
		return
	}
	if err != nil {
		rx.log.Error("Failed to get cluster field %s: %v", payload, err)
		return
	}
	rx.applyField(payload, value)
}

func (rx *IPCRx) reloadCluster() {
	fields, err := rx.redis.HGetAll(rx.ctx, redisClusterKey).Result()
	if err != nil {
		rx.log.Error("Failed to read cluster hash: %v", err)
		return
	}
	for _, name := range telemetry.Fields() {
		if value, ok := fields[name]; ok {
			rx.applyField(name, value)
		}
	}
}

func (rx *IPCRx) applyField(name, value string) {
	if err := telemetry.ApplyField(rx.sink, name, value); err != nil {
		if errors.Is(err, telemetry.ErrUnknownField) {
			rx.log.Debug("Ignoring cluster field: %v", err)
			return
		}
		rx.log.Warn("Bad cluster field %s=%q: %v", name, value, err)
	}
}

func (rx *IPCRx) refreshVehicle() {
	fields, err := rx.redis.HGetAll(rx.ctx, redisVehicleKey).Result()
	if err != nil {
		rx.log.Error("Failed to read vehicle state: %v", err)
		return
	}

	s := parseVehicleStatus(fields)
	if s.EngineOn != nil {
		rx.sink.SetEngineState(*s.EngineOn)
	}
	if s.LeftBlinker != nil {
		rx.sink.SetLeftIndicator(*s.LeftBlinker)
	}
	if s.RightBlinker != nil {
		rx.sink.SetRightIndicator(*s.RightBlinker)
	}
	if s.Locked != nil {
		rx.sink.SetLocks(*s.Locked)
	}
	if s.SeatboxClosed != nil {
		rx.sink.SetDoors(*s.SeatboxClosed)
	}
}

func (rx *IPCRx) refreshEngine() {
	fields, err := rx.redis.HGetAll(rx.ctx, redisEngineKey).Result()
	if err != nil {
		rx.log.Error("Failed to read engine state: %v", err)
		return
	}

	s, err := parseEngineStatus(fields)
	if err != nil {
		rx.log.Warn("Bad engine state: %v", err)
		return
	}
	if s.SpeedKMH != nil {
		rx.sink.SetSpeed(telemetry.KMHToMetersPerSecond(*s.SpeedKMH))
	}
	if s.RPM != nil {
		rx.sink.SetRPM(telemetry.NormalizeRPM(*s.RPM))
	}
	if s.Temperature != nil {
		rx.sink.SetHealth(telemetry.HealthFromTemperature(*s.Temperature))
	}
}

func (rx *IPCRx) refreshBattery(idx int) {
	fields, err := rx.redis.HGetAll(rx.ctx, redisBatteryKey(idx)).Result()
	if err != nil {
		rx.log.Error("Failed to get battery %d state: %v", idx, err)
		return
	}

	state, err := parseBatteryState(fields)
	if err != nil {
		rx.log.Warn("Bad battery %d state: %v", idx, err)
		return
	}
	rx.battery.Update(idx, state)

	if fuel, ok := rx.battery.Fuel(); ok {
		rx.sink.SetFuel(fuel)
	}
}

func (rx *IPCRx) readInitialStates() {
	rx.refreshVehicle()
	rx.refreshEngine()
	for i := 0; i < BatteryCount; i++ {
		rx.refreshBattery(i)
	}
	// The cluster hash is applied last so it wins over derived values
	rx.reloadCluster()
}

func (rx *IPCRx) Destroy() {
	rx.mu.Lock()
	defer rx.mu.Unlock()

	if rx.cancel != nil {
		rx.cancel()
	}

	for _, sub := range rx.subscriptions {
		sub.Close()
	}
	rx.subscriptions = nil
}
