package main

import (
	"context"
	"sync"

	"cluster-service/cluster"
	"cluster-service/telemetry"

	"github.com/ErikKalkoken/go-set"
	"github.com/go-redis/redis/v8"
)

const (
	diagGroupName           = "dashboard"
	diagWarningSetKey       = "dashboard:warning"
	diagFaultSetKey         = "dashboard:fault"
	diagEventStream         = "events:faults"
	diagEventStreamMaxLen   = 1000
	diagNotificationChannel = "dashboard"
)

// Diag records cluster warnings and controller faults in redis
type Diag struct {
	log    *LeveledLogger
	redis  *redis.Client
	mu     sync.Mutex
	faults set.Set[telemetry.Fault]
	ctx    context.Context
}

func NewDiag(logger *LeveledLogger, redis *redis.Client) *Diag {
	return &Diag{
		log:   logger,
		redis: redis,
		ctx:   context.Background(),
	}
}

func (d *Diag) Destroy() {}

// WarningChanged implements cluster.WarningListener
func (d *Diag) WarningChanged(w cluster.Warning, active bool) {
	pipe := d.redis.Pipeline()

	if active {
		pipe.SAdd(d.ctx, diagWarningSetKey, w.String())
	} else {
		pipe.SRem(d.ctx, diagWarningSetKey, w.String())
	}

	pipe.XAdd(d.ctx, &redis.XAddArgs{
		Stream: diagEventStream,
		MaxLen: diagEventStreamMaxLen,
		Values: map[string]interface{}{
			"group":   diagGroupName,
			"warning": w.String(),
			"active":  active,
		},
	})

	pipe.Publish(d.ctx, diagNotificationChannel, "warning")

	if _, err := pipe.Exec(d.ctx); err != nil {
		d.log.Error("Failed to report warning %s: %v", w, err)
	}
}

// SetFaults reports every fault whose presence changed
func (d *Diag) SetFaults(active []telemetry.Fault) {
	d.mu.Lock()
	defer d.mu.Unlock()

	present := set.Of(active...)
	for f := range set.Difference(present, d.faults).All() {
		d.reportFault(f, true)
	}
	for f := range set.Difference(d.faults, present).All() {
		d.reportFault(f, false)
	}
	d.faults = present
}

func (d *Diag) reportFault(f telemetry.Fault, present bool) {
	info, ok := f.Info()
	if !ok {
		d.log.Warn("Unknown fault code: %d", f)
		return
	}

	pipe := d.redis.Pipeline()

	values := map[string]interface{}{
		"group": diagGroupName,
	}
	if present {
		d.log.Warn("Fault set: code=%d, description=%s", f, info.Description)
		pipe.SAdd(d.ctx, diagFaultSetKey, uint32(f))
		values["code"] = uint32(f)
		values["description"] = info.Description
	} else {
		d.log.Info("Fault cleared: code=%d, description=%s", f, info.Description)
		pipe.SRem(d.ctx, diagFaultSetKey, uint32(f))
		values["code"] = -int32(f)
	}

	pipe.XAdd(d.ctx, &redis.XAddArgs{
		Stream: diagEventStream,
		MaxLen: diagEventStreamMaxLen,
		Values: values,
	})

	pipe.Publish(d.ctx, diagNotificationChannel, "fault")

	if _, err := pipe.Exec(d.ctx); err != nil {
		d.log.Error("Failed to report fault %d: %v", f, err)
	}
}
