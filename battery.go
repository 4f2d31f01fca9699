package main

import "sync"

const BatteryCount = 2

type BatteryState struct {
	Present bool
	Active  bool
	Charge  float64 // percent
}

// Battery keeps both slots and turns them into the fuel channel
type Battery struct {
	log         *LeveledLogger
	batteryData [BatteryCount]BatteryState
	mu          sync.RWMutex
}

func NewBattery(logger *LeveledLogger) *Battery {
	return &Battery{
		log: logger,
	}
}

func (b *Battery) Destroy() {}

func (b *Battery) Update(idx int, data BatteryState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if idx < 0 || idx >= BatteryCount {
		b.log.Warn("Invalid battery index: %d (num batteries: %d)", idx, BatteryCount)
		return
	}

	b.log.Debug("Battery %d: present=%v active=%v charge=%.0f%%", idx, data.Present, data.Active, data.Charge)
	b.batteryData[idx] = data
}

// Fuel returns the normalised fuel level: the charge of the active slot, or
// the mean of both when both are active. ok is false when no slot is active.
func (b *Battery) Fuel() (fuel float64, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var sum float64
	var active int
	for _, bat := range b.batteryData {
		if bat.Present && bat.Active {
			sum += bat.Charge
			active++
		}
	}
	if active == 0 {
		return 0, false
	}
	return sum / float64(active) / 100, true
}
