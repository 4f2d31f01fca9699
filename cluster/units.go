package cluster

import (
	"math"
	"strconv"
)

const (
	// MaxRPM is the absolute RPM a normalised value of 1 maps to
	MaxRPM = 8000

	// Fuel tank capacity in liters
	FuelCapacity = 100

	// Fuel percentage below which the bar turns to the warning palette
	FuelWarningPercent = 15

	// Synthetic temperature range health is mapped onto
	TempMin = 70.0
	TempMax = 100.0

	// Temperature above which the bar turns to the warning colour
	TempWarning = 95.0

	// Bar width per degree above TempMin
	TempBarScale = 3.33

	// Needle gauge geometry. The ceiling is the same for every unit mode.
	NeedleMaxSpeed = 200.0
	NeedleMinAngle = -135.0
	NeedleMaxAngle = 135.0
)

// ConvertSpeed converts meters per second to the integer readout for mode
func ConvertSpeed(metersPerSecond float64, mode SpeedMode) int {
	return int(math.Round(metersPerSecond * mode.Factor()))
}

// NeedleAngle maps an already converted speed onto the gauge arc in degrees.
// Speeds are capped at NeedleMaxSpeed; values below zero are not raised.
func NeedleAngle(speed float64) float64 {
	clamped := math.Min(speed, NeedleMaxSpeed)
	return NeedleMinAngle + (clamped/NeedleMaxSpeed)*(NeedleMaxAngle-NeedleMinAngle)
}

// Temperature maps normalised health onto the synthetic temperature range
func Temperature(health float64) float64 {
	return TempMin + health*(TempMax-TempMin)
}

// formatNumber renders v with the fewest digits that round-trip
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatFixed1 renders v with one decimal. Exact ties round up.
func formatFixed1(v float64) string {
	if q := v * 4; q == math.Trunc(q) && math.Mod(q, 2) != 0 {
		return strconv.FormatFloat(math.Ceil(v*10)/10, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// FormatRPM renders a normalised RPM as thousands, e.g. 0.5 -> "4.0k"
func FormatRPM(rpm float64) string {
	actual := rpm * MaxRPM
	return formatFixed1(actual/1000) + "k"
}
