package telemetry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"cluster-service/cluster"
)

// Field names of the normalised telemetry hash
const (
	FieldEngine         = "engine"
	FieldSpeed          = "speed"
	FieldRPM            = "rpm"
	FieldFuel           = "fuel"
	FieldHealth         = "health"
	FieldGear           = "gear"
	FieldHeadlights     = "headlights"
	FieldIndicatorLeft  = "indicator-left"
	FieldIndicatorRight = "indicator-right"
	FieldSeatbelts      = "seatbelts"
	FieldSpeedMode      = "speed-mode"
	FieldDoors          = "doors"
	FieldLocks          = "locks"
)

var ErrUnknownField = errors.New("unknown telemetry field")

// Fields lists every field ApplyField understands. The speed mode comes
// first so a full reload converts the speed in the new unit.
func Fields() []string {
	return []string{
		FieldSpeedMode, FieldEngine, FieldSpeed, FieldRPM, FieldFuel, FieldHealth,
		FieldGear, FieldHeadlights, FieldIndicatorLeft, FieldIndicatorRight,
		FieldSeatbelts, FieldDoors, FieldLocks,
	}
}

// ApplyField decodes value and forwards it to the matching sink operation
func ApplyField(sink Sink, name, value string) error {
	value = strings.TrimSpace(value)

	switch name {
	case FieldEngine:
		on, err := parseSwitch(value, "on", "off")
		if err != nil {
			return fieldError(name, err)
		}
		sink.SetEngineState(on)
	case FieldSpeed, FieldRPM, FieldFuel, FieldHealth:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fieldError(name, err)
		}
		switch name {
		case FieldSpeed:
			sink.SetSpeed(v)
		case FieldRPM:
			sink.SetRPM(v)
		case FieldFuel:
			sink.SetFuel(v)
		default:
			sink.SetHealth(v)
		}
	case FieldGear:
		gear, err := parseGear(value)
		if err != nil {
			return fieldError(name, err)
		}
		sink.SetGear(gear)
	case FieldHeadlights:
		state, err := parseHeadlights(value)
		if err != nil {
			return fieldError(name, err)
		}
		sink.SetHeadlights(state)
	case FieldIndicatorLeft, FieldIndicatorRight:
		on, err := parseSwitch(value, "on", "off")
		if err != nil {
			return fieldError(name, err)
		}
		if name == FieldIndicatorLeft {
			sink.SetLeftIndicator(on)
		} else {
			sink.SetRightIndicator(on)
		}
	case FieldSeatbelts:
		fastened, err := parseSwitch(value, "fastened", "unfastened")
		if err != nil {
			return fieldError(name, err)
		}
		sink.SetSeatbelts(fastened)
	case FieldSpeedMode:
		mode, err := ParseSpeedMode(value)
		if err != nil {
			return fieldError(name, err)
		}
		sink.SetSpeedMode(mode)
	case FieldDoors:
		closed, err := parseSwitch(value, "closed", "open")
		if err != nil {
			return fieldError(name, err)
		}
		sink.SetDoors(closed)
	case FieldLocks:
		locked, err := parseSwitch(value, "locked", "unlocked")
		if err != nil {
			return fieldError(name, err)
		}
		sink.SetLocks(locked)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

func fieldError(name string, err error) error {
	return fmt.Errorf("failed to parse field %s: %w", name, err)
}

// parseSwitch accepts the two words given plus anything strconv.ParseBool does
func parseSwitch(value, yes, no string) (bool, error) {
	switch strings.ToLower(value) {
	case yes:
		return true, nil
	case no:
		return false, nil
	}
	return strconv.ParseBool(value)
}

func parseGear(value string) (int, error) {
	switch strings.ToUpper(value) {
	case "N":
		return 0, nil
	case "R":
		return -1, nil
	}
	return strconv.Atoi(strings.TrimPrefix(strings.ToUpper(value), "G"))
}

func parseHeadlights(value string) (cluster.HeadlightState, error) {
	switch strings.ToLower(value) {
	case "off", "0":
		return cluster.HeadlightsOff, nil
	case "on", "1":
		return cluster.HeadlightsOn, nil
	case "high-beam", "2":
		return cluster.HeadlightsHighBeam, nil
	}
	return cluster.HeadlightsOff, fmt.Errorf("invalid headlight state %q", value)
}

// ParseSpeedMode accepts kmh, mph, knots or the numeric mode
func ParseSpeedMode(value string) (cluster.SpeedMode, error) {
	switch strings.ToLower(value) {
	case "kmh", "km/h", "0":
		return cluster.SpeedModeKMH, nil
	case "mph", "1":
		return cluster.SpeedModeMPH, nil
	case "knots", "kn", "2":
		return cluster.SpeedModeKnots, nil
	}
	return cluster.SpeedModeKMH, fmt.Errorf("invalid speed mode %q", value)
}

// KMHToMetersPerSecond converts a km/h reading to the unit SetSpeed takes
func KMHToMetersPerSecond(kmh float64) float64 {
	return kmh / cluster.KMHFactor
}

// NormalizeRPM scales an absolute RPM to the [0,1] range SetRPM takes
func NormalizeRPM(rpm float64) float64 {
	return rpm / cluster.MaxRPM
}

// HealthFromTemperature maps a temperature in °C onto the health range so
// that SetHealth shows the same temperature. Values outside the gauge clamp.
func HealthFromTemperature(celsius float64) float64 {
	h := (celsius - cluster.TempMin) / (cluster.TempMax - cluster.TempMin)
	return math.Max(0, math.Min(1, h))
}
