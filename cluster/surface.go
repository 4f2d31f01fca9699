package cluster

import (
	"fmt"
	"strings"
)

// Element is a single mutable target on the display surface
type Element interface {
	SetText(text string)
	AddClass(class string)
	RemoveClass(class string)
	SetStyle(property, value string)
}

// Surface resolves selectors to display elements
type Surface interface {
	Element(selector string) (Element, bool)
}

// Selectors the host surface must provide
const (
	SelectorEngineIcon    = "#engine-icon"
	SelectorSpeed         = "#speed"
	SelectorSpeedNeedle   = "#speed-needle"
	SelectorRPM           = "#rpm-value"
	SelectorFuelBar       = "#fuel-bar"
	SelectorFuelText      = "#fuel-text"
	SelectorTempValue     = "#temp-value"
	SelectorTempBar       = "#temp-bar"
	SelectorGear          = "#voltage-value"
	SelectorLightsIcon    = "#lights-icon"
	SelectorLightsGlyph   = "#lights-icon .icon-symbol"
	SelectorSeatbeltIcon  = "#seatbelt-icon"
	SelectorSeatbeltGlyph = "#seatbelt-icon .icon-symbol"
	SelectorDoorIcon      = "#door-icon"
	SelectorDoorGlyph     = "#door-icon .icon-symbol"
	SelectorLockIcon      = "#lock-icon"
	SelectorLockGlyph     = "#lock-icon .icon-symbol"
	SelectorSpeedUnit     = ".speed-unit"

	// Optional, no operation writes to it yet
	SelectorIndicators = "#indicators"
)

// RequiredSelectors returns every selector Bind insists on, in binding order
func RequiredSelectors() []string {
	return []string{
		SelectorEngineIcon,
		SelectorSpeed,
		SelectorSpeedNeedle,
		SelectorRPM,
		SelectorFuelBar,
		SelectorFuelText,
		SelectorTempValue,
		SelectorTempBar,
		SelectorGear,
		SelectorLightsIcon,
		SelectorLightsGlyph,
		SelectorSeatbeltIcon,
		SelectorSeatbeltGlyph,
		SelectorDoorIcon,
		SelectorDoorGlyph,
		SelectorLockIcon,
		SelectorLockGlyph,
		SelectorSpeedUnit,
	}
}

// MissingTargetsError lists the selectors a surface could not resolve
type MissingTargetsError struct {
	Selectors []string
}

func (e *MissingTargetsError) Error() string {
	return fmt.Sprintf("display surface is missing %d target(s): %s",
		len(e.Selectors), strings.Join(e.Selectors, ", "))
}

// Bindings is the resolved target table. It is built once and never
// re-resolved, so later changes to the surface structure are not picked up.
type Bindings struct {
	engineIcon    Element
	speed         Element
	speedNeedle   Element
	rpm           Element
	fuelBar       Element
	fuelText      Element
	tempValue     Element
	tempBar       Element
	gear          Element
	lightsIcon    Element
	lightsGlyph   Element
	seatbeltIcon  Element
	seatbeltGlyph Element
	doorIcon      Element
	doorGlyph     Element
	lockIcon      Element
	lockGlyph     Element
	speedUnit     Element
	indicators    Element // nil when the surface has none
}

// Bind resolves every required selector on s. All missing selectors are
// reported together.
func Bind(s Surface) (*Bindings, error) {
	resolved := make(map[string]Element)
	var missing []string
	for _, sel := range RequiredSelectors() {
		el, ok := s.Element(sel)
		if !ok || el == nil {
			missing = append(missing, sel)
			continue
		}
		resolved[sel] = el
	}
	if len(missing) > 0 {
		return nil, &MissingTargetsError{Selectors: missing}
	}

	b := &Bindings{
		engineIcon:    resolved[SelectorEngineIcon],
		speed:         resolved[SelectorSpeed],
		speedNeedle:   resolved[SelectorSpeedNeedle],
		rpm:           resolved[SelectorRPM],
		fuelBar:       resolved[SelectorFuelBar],
		fuelText:      resolved[SelectorFuelText],
		tempValue:     resolved[SelectorTempValue],
		tempBar:       resolved[SelectorTempBar],
		gear:          resolved[SelectorGear],
		lightsIcon:    resolved[SelectorLightsIcon],
		lightsGlyph:   resolved[SelectorLightsGlyph],
		seatbeltIcon:  resolved[SelectorSeatbeltIcon],
		seatbeltGlyph: resolved[SelectorSeatbeltGlyph],
		doorIcon:      resolved[SelectorDoorIcon],
		doorGlyph:     resolved[SelectorDoorGlyph],
		lockIcon:      resolved[SelectorLockIcon],
		lockGlyph:     resolved[SelectorLockGlyph],
		speedUnit:     resolved[SelectorSpeedUnit],
	}
	if el, ok := s.Element(SelectorIndicators); ok && el != nil {
		b.indicators = el
	}
	return b, nil
}

// Handles returns the logical channel name -> element table
func (b *Bindings) Handles() map[string]Element {
	h := map[string]Element{
		"engine":     b.engineIcon,
		"speed":      b.speed,
		"rpm":        b.rpm,
		"fuel":       b.fuelText,
		"health":     b.tempValue,
		"gear":       b.gear,
		"headlights": b.lightsIcon,
		"seatbelts":  b.seatbeltIcon,
		"speedMode":  b.speedUnit,
	}
	if b.indicators != nil {
		h["indicators"] = b.indicators
	}
	return h
}

// Indicators returns the optional indicator target
func (b *Bindings) Indicators() (Element, bool) {
	return b.indicators, b.indicators != nil
}
