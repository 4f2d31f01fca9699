package cluster

// SpeedMode selects the unit the speed readout is converted to
type SpeedMode int

const (
	SpeedModeKMH SpeedMode = iota
	SpeedModeMPH
	SpeedModeKnots
)

// Conversion factors from meters per second
const (
	KMHFactor   = 3.6
	MPHFactor   = 2.236936
	KnotsFactor = 1.943844
)

// Factor returns the m/s conversion factor. Unknown modes use km/h.
func (m SpeedMode) Factor() float64 {
	switch m {
	case SpeedModeMPH:
		return MPHFactor
	case SpeedModeKnots:
		return KnotsFactor
	default:
		return KMHFactor
	}
}

// Label returns the unit label shown next to the speed readout
func (m SpeedMode) Label() string {
	switch m {
	case SpeedModeMPH:
		return "MPH"
	case SpeedModeKnots:
		return "Knots"
	default:
		return "KMH"
	}
}

func (m SpeedMode) String() string {
	return m.Label()
}

// HeadlightState is the headlight switch position
type HeadlightState int

const (
	HeadlightsOff HeadlightState = iota
	HeadlightsOn
	HeadlightsHighBeam
)

func (h HeadlightState) String() string {
	switch h {
	case HeadlightsOn:
		return "on"
	case HeadlightsHighBeam:
		return "high-beam"
	default:
		return "off"
	}
}

// IndicatorMask holds the turn indicator state, bit0 = left, bit1 = right
type IndicatorMask uint8

const (
	IndicatorLeft  IndicatorMask = 0b01
	IndicatorRight IndicatorMask = 0b10
)

func (m IndicatorMask) Left() bool {
	return m&IndicatorLeft != 0
}

func (m IndicatorMask) Right() bool {
	return m&IndicatorRight != 0
}

// with returns the mask with bit set or cleared, the other bit untouched
func (m IndicatorMask) with(bit IndicatorMask, on bool) IndicatorMask {
	if on {
		return (m &^ bit) | bit
	}
	return m &^ bit
}

// Warning is a condition the cluster flags in warning colours
type Warning int

const (
	WarningFuelLow Warning = iota + 1
	WarningTemperatureHigh
	WarningSeatbeltUnfastened
	WarningDoorOpen
)

var warningNames = map[Warning]string{
	WarningFuelLow:            "fuel-low",
	WarningTemperatureHigh:    "temperature-high",
	WarningSeatbeltUnfastened: "seatbelt-unfastened",
	WarningDoorOpen:           "door-open",
}

func (w Warning) String() string {
	if name, ok := warningNames[w]; ok {
		return name
	}
	return "unknown"
}

// Warnings lists all warnings in a stable order
func Warnings() []Warning {
	return []Warning{WarningFuelLow, WarningTemperatureHigh, WarningSeatbeltUnfastened, WarningDoorOpen}
}
