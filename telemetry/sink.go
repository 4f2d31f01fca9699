package telemetry

import "cluster-service/cluster"

// Sink receives normalised telemetry. *cluster.Mapper implements it.
type Sink interface {
	SetEngineState(on bool)
	SetSpeed(metersPerSecond float64)
	SetRPM(rpm float64)
	SetFuel(fuel float64)
	SetHealth(health float64)
	SetGear(gear int)
	SetHeadlights(state cluster.HeadlightState)
	SetLeftIndicator(on bool)
	SetRightIndicator(on bool)
	SetSeatbelts(fastened bool)
	SetSpeedMode(mode cluster.SpeedMode)
	SetDoors(closed bool)
	SetLocks(locked bool)
}

var _ Sink = (*cluster.Mapper)(nil)
