package main

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"cluster-service/display"

	"github.com/ErikKalkoken/go-set"
	"github.com/go-redis/redis/v8"
)

// IPCTx mirrors the display document into the dashboard hash. Changes are
// collected and written in batches by a single goroutine so display updates
// never wait for redis.
type IPCTx struct {
	log    *LeveledLogger
	redis  *redis.Client
	doc    *display.Document
	mu     sync.Mutex
	dirty  set.Set[string]
	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewIPCTx(logger *LeveledLogger, redis *redis.Client, doc *display.Document) *IPCTx {
	ctx, cancel := context.WithCancel(context.Background())

	tx := &IPCTx{
		log:    logger,
		redis:  redis,
		doc:    doc,
		wake:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	doc.OnChange(tx.markDirty)

	go tx.run()

	return tx
}

func (tx *IPCTx) markDirty(c display.Change) {
	tx.mu.Lock()
	tx.dirty.Add(c.Key)
	tx.mu.Unlock()

	select {
	case tx.wake <- struct{}{}:
	default:
	}
}

func (tx *IPCTx) run() {
	defer close(tx.done)

	for {
		select {
		case <-tx.ctx.Done():
			return
		case <-tx.wake:
			if err := tx.flush(); err != nil {
				tx.log.Error("%v", err)
			}
		}
	}
}

// flush writes every dirty node in one pipeline
func (tx *IPCTx) flush() error {
	tx.mu.Lock()
	keys := slices.Sorted(tx.dirty.All())
	tx.dirty = set.Set[string]{}
	tx.mu.Unlock()

	if len(keys) == 0 {
		return nil
	}
	return tx.write(keys)
}

// SyncAll writes the whole document, used once at startup
func (tx *IPCTx) SyncAll() error {
	var keys []string
	for _, s := range tx.doc.Snapshots() {
		keys = append(keys, s.Key)
	}
	return tx.write(keys)
}

func (tx *IPCTx) write(keys []string) error {
	pipe := tx.redis.Pipeline()

	wanted := set.Of(keys...)
	for _, s := range tx.doc.Snapshots() {
		if !wanted.Contains(s.Key) {
			continue
		}
		pipe.HSet(tx.ctx, redisDashboardKey, dashboardFields(s))
		pipe.Publish(tx.ctx, redisDashboardKey, s.Key)
	}

	if _, err := pipe.Exec(tx.ctx); err != nil {
		return fmt.Errorf("failed to mirror display: %w", err)
	}
	tx.log.Debug("Mirrored %d display node(s)", len(keys))
	return nil
}

// dashboardFields encodes a node as fields of the dashboard hash
func dashboardFields(s display.NodeState) map[string]interface{} {
	return map[string]interface{}{
		s.Key + ":text":  s.Text,
		s.Key + ":class": s.ClassString(),
		s.Key + ":style": s.StyleString(),
	}
}

func (tx *IPCTx) Destroy() {
	tx.cancel()
	<-tx.done
}
