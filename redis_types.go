package main

import (
	"fmt"
	"strconv"
)

// Redis hashes, each published on the channel of the same name
const (
	redisClusterKey   = "cluster"
	redisVehicleKey   = "vehicle"
	redisEngineKey    = "engine-ecu"
	redisDashboardKey = "dashboard"
)

func redisBatteryKey(idx int) string {
	return fmt.Sprintf("battery:%d", idx)
}

// Fields of the vehicle hash
const (
	vehicleFieldState         = "state"
	vehicleFieldBlinker       = "blinker:state"
	vehicleFieldHandlebarLock = "handlebar:lock-sensor"
	vehicleFieldSeatbox       = "seatbox:lock"
)

// Fields of the engine-ecu hash
const (
	engineFieldSpeed       = "speed"
	engineFieldRPM         = "rpm"
	engineFieldTemperature = "temperature"
)

// Fields of a battery hash
const (
	batteryFieldPresent = "present"
	batteryFieldState   = "state"
	batteryFieldCharge  = "charge"
)

// VehicleStatus is the part of the vehicle hash the cluster shows. A nil
// field was not present in the hash.
type VehicleStatus struct {
	EngineOn      *bool
	LeftBlinker   *bool
	RightBlinker  *bool
	Locked        *bool
	SeatboxClosed *bool
}

func parseVehicleStatus(fields map[string]string) VehicleStatus {
	var s VehicleStatus

	if state, ok := fields[vehicleFieldState]; ok {
		s.EngineOn = boolPtr(state == "ready-to-drive")
	}
	if blinker, ok := fields[vehicleFieldBlinker]; ok {
		s.LeftBlinker = boolPtr(blinker == "left" || blinker == "both")
		s.RightBlinker = boolPtr(blinker == "right" || blinker == "both")
	}
	if lock, ok := fields[vehicleFieldHandlebarLock]; ok {
		s.Locked = boolPtr(lock == "locked")
	}
	if seatbox, ok := fields[vehicleFieldSeatbox]; ok {
		s.SeatboxClosed = boolPtr(seatbox != "open")
	}
	return s
}

// EngineStatus is the part of the engine-ecu hash the cluster shows
type EngineStatus struct {
	SpeedKMH    *float64
	RPM         *float64
	Temperature *float64
}

func parseEngineStatus(fields map[string]string) (EngineStatus, error) {
	var s EngineStatus
	var err error
	if s.SpeedKMH, err = floatField(fields, engineFieldSpeed); err != nil {
		return s, err
	}
	if s.RPM, err = floatField(fields, engineFieldRPM); err != nil {
		return s, err
	}
	if s.Temperature, err = floatField(fields, engineFieldTemperature); err != nil {
		return s, err
	}
	return s, nil
}

func parseBatteryState(fields map[string]string) (BatteryState, error) {
	state := BatteryState{
		Present: fields[batteryFieldPresent] == "true",
		Active:  fields[batteryFieldState] == "active",
	}
	charge, err := floatField(fields, batteryFieldCharge)
	if err != nil {
		return state, err
	}
	if charge != nil {
		state.Charge = *charge
	}
	return state, nil
}

func floatField(fields map[string]string, name string) (*float64, error) {
	raw, ok := fields[name]
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return &v, nil
}

func boolPtr(b bool) *bool {
	return &b
}
