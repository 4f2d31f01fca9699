package cluster

// Hooks are the visual feedback extension points. The mapper calls them
// while holding its lock, so implementations must not call back into it.
type Hooks interface {
	// RPMIndicators receives the normalised RPM after the readout is updated
	RPMIndicators(rpm float64)

	// IndicatorsDisplay receives the full mask after either indicator changes
	IndicatorsDisplay(mask IndicatorMask)
}

// NopHooks leaves the display untouched
type NopHooks struct{}

func (NopHooks) RPMIndicators(rpm float64)            {}
func (NopHooks) IndicatorsDisplay(mask IndicatorMask) {}

// WarningListener is told when a warning condition starts or stops
type WarningListener interface {
	WarningChanged(w Warning, active bool)
}

// WarningListenerFunc adapts a function to WarningListener
type WarningListenerFunc func(w Warning, active bool)

func (f WarningListenerFunc) WarningChanged(w Warning, active bool) {
	f(w, active)
}
