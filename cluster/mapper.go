package cluster

import (
	"math"
	"strconv"
	"sync"

	"github.com/ErikKalkoken/go-set"
)

// CSS classes toggled on icons
const (
	ClassActive  = "active"
	ClassWarning = "warning"
)

// Icon glyphs
const (
	GlyphBulb     = "\U0001F4A1"
	GlyphHighBeam = "\U0001F506"
	GlyphLocked   = "\U0001F512"
	GlyphUnlocked = "\U0001F513"
	GlyphDoor     = "\U0001F6AA"
)

// Bar styles
const (
	fuelWarningBackground = "var(--warning-color)"
	fuelWarningShadow     = "0 0 6px rgba(255, 165, 0, 0.6)"
	fuelNormalBackground  = "linear-gradient(90deg, var(--fuel-color), #0088aa)"
	fuelNormalShadow      = "0 0 6px rgba(0, 200, 255, 0.6)"

	tempWarningBackground = "var(--warning-color)"
	tempNormalBackground  = "linear-gradient(90deg, var(--success-color), var(--warning-color))"
)

// Config holds the optional collaborators of a Mapper
type Config struct {
	Logger   Logger
	Hooks    Hooks
	Warnings WarningListener
}

// Mapper turns telemetry values into display surface updates. Each mapper
// owns its speed mode and indicator mask, so several clusters can coexist.
type Mapper struct {
	mu       sync.Mutex
	bind     *Bindings
	log      Logger
	hooks    Hooks
	listener WarningListener

	mode       SpeedMode
	indicators IndicatorMask
	warnings   set.Set[Warning]
}

// New binds the mapper to s. Binding fails if any required target is missing.
func New(s Surface, config Config) (*Mapper, error) {
	bind, err := Bind(s)
	if err != nil {
		return nil, err
	}

	m := &Mapper{
		bind:     bind,
		log:      config.Logger,
		hooks:    config.Hooks,
		listener: config.Warnings,
		mode:     SpeedModeKMH,
	}
	if m.log == nil {
		m.log = nopLogger{}
	}
	if m.hooks == nil {
		m.hooks = NopHooks{}
	}
	return m, nil
}

// Bindings returns the resolved target table
func (m *Mapper) Bindings() *Bindings {
	return m.bind
}

// Init applies the startup defaults: km/h, engine on, headlights on,
// seatbelts fastened, doors closed and locks engaged.
func (m *Mapper) Init() {
	m.SetSpeedMode(SpeedModeKMH)
	m.SetEngineState(true)
	m.SetHeadlights(HeadlightsOn)
	m.SetSeatbelts(true)
	m.SetLocks(true)
	m.SetDoors(true)
	m.log.Info("Cluster display initialized")
}

func (m *Mapper) SetEngineState(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	toggleClass(m.bind.engineIcon, ClassActive, on)
}

// SetSpeed takes meters per second and updates the readout and needle
func (m *Mapper) SetSpeed(metersPerSecond float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	speed := ConvertSpeed(metersPerSecond, m.mode)
	m.bind.speed.SetText(strconv.Itoa(speed))
	m.updateNeedle(float64(speed))
}

func (m *Mapper) updateNeedle(speed float64) {
	angle := formatNumber(NeedleAngle(speed)) + "deg"
	m.bind.speedNeedle.SetStyle("--rotation", angle)
	m.bind.speedNeedle.SetStyle("transform", "translate(-50%, -100%) rotate("+angle+")")
}

// SetRPM takes a normalised RPM in [0,1]
func (m *Mapper) SetRPM(rpm float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bind.rpm.SetText(FormatRPM(rpm))
	m.hooks.RPMIndicators(rpm)
}

// SetFuel takes a normalised fuel level in [0,1]
func (m *Mapper) SetFuel(fuel float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	percent := fuel * 100
	m.bind.fuelBar.SetStyle("width", formatNumber(percent)+"%")

	liters := int(math.Floor(fuel * FuelCapacity))
	m.bind.fuelText.SetText(strconv.Itoa(liters) + "L")

	low := percent < FuelWarningPercent
	if low {
		m.bind.fuelBar.SetStyle("background", fuelWarningBackground)
		m.bind.fuelBar.SetStyle("box-shadow", fuelWarningShadow)
	} else {
		m.bind.fuelBar.SetStyle("background", fuelNormalBackground)
		m.bind.fuelBar.SetStyle("box-shadow", fuelNormalShadow)
	}
	m.setWarning(WarningFuelLow, low)
}

// SetHealth takes a normalised health value and shows it on the
// temperature gauge, 0 -> 70°C and 1 -> 100°C.
func (m *Mapper) SetHealth(health float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	temp := Temperature(health)
	m.bind.tempValue.SetText(strconv.Itoa(int(math.Round(temp))) + "°C")
	m.bind.tempBar.SetStyle("width", formatNumber((temp-TempMin)*TempBarScale)+"%")

	hot := temp > TempWarning
	if hot {
		m.bind.tempBar.SetStyle("background", tempWarningBackground)
	} else {
		m.bind.tempBar.SetStyle("background", tempNormalBackground)
	}
	m.setWarning(WarningTemperatureHigh, hot)
}

// SetGear shows N for 0, R for -1 and G<n> otherwise in the voltage slot
func (m *Mapper) SetGear(gear int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bind.gear.SetText(GearLabel(gear))
}

// GearLabel returns the text shown for gear
func GearLabel(gear int) string {
	switch gear {
	case 0:
		return "N"
	case -1:
		return "R"
	default:
		return "G" + strconv.Itoa(gear)
	}
}

func (m *Mapper) SetHeadlights(state HeadlightState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch state {
	case HeadlightsOn:
		m.bind.lightsIcon.AddClass(ClassActive)
		m.bind.lightsGlyph.SetText(GlyphBulb)
	case HeadlightsHighBeam:
		m.bind.lightsIcon.AddClass(ClassActive)
		m.bind.lightsGlyph.SetText(GlyphHighBeam)
	default:
		m.bind.lightsIcon.RemoveClass(ClassActive)
		m.bind.lightsGlyph.SetText(GlyphBulb)
	}
}

func (m *Mapper) SetLeftIndicator(on bool) {
	m.setIndicator(IndicatorLeft, on)
}

func (m *Mapper) SetRightIndicator(on bool) {
	m.setIndicator(IndicatorRight, on)
}

func (m *Mapper) setIndicator(bit IndicatorMask, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.indicators = m.indicators.with(bit, on)
	m.log.Debug("Indicators: left=%v right=%v", m.indicators.Left(), m.indicators.Right())
	m.hooks.IndicatorsDisplay(m.indicators)
}

// SetSeatbelts flags a warning when the seatbelts are not fastened
func (m *Mapper) SetSeatbelts(fastened bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if fastened {
		m.bind.seatbeltIcon.RemoveClass(ClassWarning)
		m.bind.seatbeltGlyph.SetText(GlyphLocked)
	} else {
		m.bind.seatbeltIcon.AddClass(ClassWarning)
		m.bind.seatbeltGlyph.SetText(GlyphUnlocked)
	}
	m.setWarning(WarningSeatbeltUnfastened, !fastened)
}

// SetSpeedMode changes the unit used by the next SetSpeed call and updates
// the unit label. The speed already on display is left as is.
func (m *Mapper) SetSpeedMode(mode SpeedMode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mode = mode
	m.bind.speedUnit.SetText(mode.Label())
}

// SetDoors marks the door icon active while the doors are open
func (m *Mapper) SetDoors(closed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	toggleClass(m.bind.doorIcon, ClassActive, !closed)
	m.bind.doorGlyph.SetText(GlyphDoor)
	m.setWarning(WarningDoorOpen, !closed)
}

func (m *Mapper) SetLocks(locked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	toggleClass(m.bind.lockIcon, ClassActive, locked)
	if locked {
		m.bind.lockGlyph.SetText(GlyphLocked)
	} else {
		m.bind.lockGlyph.SetText(GlyphUnlocked)
	}
}

// SpeedMode returns the current unit mode
func (m *Mapper) SpeedMode() SpeedMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Indicators returns the current indicator mask
func (m *Mapper) Indicators() IndicatorMask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indicators
}

// ActiveWarnings returns the warnings currently raised
func (m *Mapper) ActiveWarnings() []Warning {
	m.mu.Lock()
	defer m.mu.Unlock()

	var active []Warning
	for _, w := range Warnings() {
		if m.warnings.Contains(w) {
			active = append(active, w)
		}
	}
	return active
}

func (m *Mapper) setWarning(w Warning, active bool) {
	if m.warnings.Contains(w) == active {
		return
	}
	if active {
		m.warnings.Add(w)
	} else {
		m.warnings.Delete(w)
	}
	m.log.Info("Warning %s: %v", w, active)
	if m.listener != nil {
		m.listener.WarningChanged(w, active)
	}
}

func toggleClass(el Element, class string, on bool) {
	if on {
		el.AddClass(class)
	} else {
		el.RemoveClass(class)
	}
}
