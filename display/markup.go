package display

// Element ids of the default cluster layout
const (
	IDSpeedGauge   = "speed-gauge"
	IDSpeedNeedle  = "speed-needle"
	IDSpeed        = "speed"
	IDRPM          = "rpm-value"
	IDFuelBar      = "fuel-bar"
	IDFuelText     = "fuel-text"
	IDTempBar      = "temp-bar"
	IDTempValue    = "temp-value"
	IDVoltage      = "voltage-value"
	IDStatusIcons  = "status-icons"
	IDEngineIcon   = "engine-icon"
	IDLightsIcon   = "lights-icon"
	IDSeatbeltIcon = "seatbelt-icon"
	IDDoorIcon     = "door-icon"
	IDLockIcon     = "lock-icon"

	ClassSpeedUnit  = "speed-unit"
	ClassIconSymbol = "icon-symbol"
)

// NewClusterDocument builds the default cluster layout with every target
// the mapper binds to.
func NewClusterDocument() *Document {
	d := NewDocument()

	gauge := d.Append(nil, IDSpeedGauge, "gauge")
	d.Append(gauge, IDSpeedNeedle, "needle")
	d.Append(gauge, IDSpeed, "speed-value").SetText("0")
	d.Append(gauge, "", ClassSpeedUnit).SetText("KMH")

	d.Append(nil, IDRPM, "rpm-value").SetText("0.0k")

	fuel := d.Append(nil, "fuel-gauge", "bar-gauge")
	d.Append(fuel, IDFuelBar, "bar")
	d.Append(fuel, IDFuelText, "bar-text")

	temp := d.Append(nil, "temp-gauge", "bar-gauge")
	d.Append(temp, IDTempBar, "bar")
	d.Append(temp, IDTempValue, "bar-text")

	d.Append(nil, IDVoltage, "status-value")

	icons := d.Append(nil, IDStatusIcons)
	for _, id := range []string{IDEngineIcon, IDLightsIcon, IDSeatbeltIcon, IDDoorIcon, IDLockIcon} {
		icon := d.Append(icons, id, "status-icon")
		d.Append(icon, "", ClassIconSymbol)
	}
	return d
}
