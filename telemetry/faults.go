package telemetry

// Fault is a controller fault reported over CAN
type Fault uint32

const (
	FaultNone Fault = iota
	FaultBatteryOverVoltage
	FaultBatteryUnderVoltage
	FaultMotorShortCircuit
	FaultMotorStalled
	FaultHallSensorAbnormal
	FaultMOSFETCheckError
	FaultMotorOpenCircuit
	FaultPowerOnSelfCheckError
	FaultOverTemperature
	FaultThrottleAbnormal
	FaultMotorTemperatureProtection
	FaultThrottleActiveAtPowerUp
	FaultInternal15vAbnormal
)

type FaultSeverity int

const (
	SeverityWarning FaultSeverity = iota
	SeverityCritical
)

// FaultInfo describes a fault for the dashboard
type FaultInfo struct {
	Description string
	Severity    FaultSeverity
}

var faultInfo = map[Fault]FaultInfo{
	FaultBatteryOverVoltage:         {"Battery over-voltage", SeverityCritical},
	FaultBatteryUnderVoltage:        {"Battery under-voltage", SeverityCritical},
	FaultMotorShortCircuit:          {"Motor short-circuit", SeverityCritical},
	FaultMotorStalled:               {"Motor stalled", SeverityCritical},
	FaultHallSensorAbnormal:         {"Hall sensor abnormal", SeverityCritical},
	FaultMOSFETCheckError:           {"MOSFET check error", SeverityCritical},
	FaultMotorOpenCircuit:           {"Motor open-circuit", SeverityCritical},
	FaultPowerOnSelfCheckError:      {"Power-on self-check error", SeverityCritical},
	FaultOverTemperature:            {"Over-temperature", SeverityCritical},
	FaultThrottleAbnormal:           {"Throttle abnormal", SeverityCritical},
	FaultInternal15vAbnormal:        {"Internal 15V abnormal", SeverityCritical},
	FaultThrottleActiveAtPowerUp:    {"Throttle active at power up", SeverityWarning},
	FaultMotorTemperatureProtection: {"Motor temperature protection", SeverityWarning},
}

// Info returns the description of f
func (f Fault) Info() (FaultInfo, bool) {
	info, ok := faultInfo[f]
	return info, ok
}

var boschFaults = map[uint32]Fault{
	0x01: FaultBatteryOverVoltage,
	0x02: FaultBatteryUnderVoltage,
	0x03: FaultMotorShortCircuit,
	0x04: FaultMotorStalled,
	0x05: FaultHallSensorAbnormal,
	0x06: FaultMOSFETCheckError,
	0x07: FaultMotorOpenCircuit,
	0x0A: FaultPowerOnSelfCheckError,
	0x0B: FaultOverTemperature,
	0x0C: FaultThrottleAbnormal,
	0x0D: FaultMotorTemperatureProtection,
	0x0E: FaultThrottleActiveAtPowerUp,
	0x10: FaultInternal15vAbnormal,
}

// Votol reports one fault per bit of status byte 6
var votolFaults = map[uint32]Fault{
	0x01: FaultMotorStalled,
	0x02: FaultHallSensorAbnormal,
	0x04: FaultThrottleAbnormal,
	0x08: FaultPowerOnSelfCheckError,
	0x20: FaultOverTemperature,
	0x40: FaultInternal15vAbnormal,
}

func boschFault(code uint32) Fault {
	if f, ok := boschFaults[code]; ok {
		return f
	}
	return FaultNone
}

func votolFault(bit uint32) Fault {
	if f, ok := votolFaults[bit]; ok {
		return f
	}
	return FaultNone
}
