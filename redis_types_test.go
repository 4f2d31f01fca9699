package main

import (
	"testing"

	"cluster-service/display"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVehicleStatus(t *testing.T) {
	t.Run("should map the vehicle hash", func(t *testing.T) {
		s := parseVehicleStatus(map[string]string{
			"state":                 "ready-to-drive",
			"blinker:state":         "both",
			"handlebar:lock-sensor": "unlocked",
			"seatbox:lock":          "open",
		})
		require.NotNil(t, s.EngineOn)
		assert.True(t, *s.EngineOn)
		assert.True(t, *s.LeftBlinker)
		assert.True(t, *s.RightBlinker)
		assert.False(t, *s.Locked)
		assert.False(t, *s.SeatboxClosed)
	})
	t.Run("should map single blinkers", func(t *testing.T) {
		s := parseVehicleStatus(map[string]string{"blinker:state": "right", "state": "parked"})
		assert.False(t, *s.LeftBlinker)
		assert.True(t, *s.RightBlinker)
		assert.False(t, *s.EngineOn)
	})
	t.Run("should leave missing fields unset", func(t *testing.T) {
		s := parseVehicleStatus(map[string]string{})
		assert.Nil(t, s.EngineOn)
		assert.Nil(t, s.LeftBlinker)
		assert.Nil(t, s.Locked)
		assert.Nil(t, s.SeatboxClosed)
	})
}

func TestParseEngineStatus(t *testing.T) {
	s, err := parseEngineStatus(map[string]string{"speed": "36", "rpm": "4000"})
	require.NoError(t, err)
	assert.Equal(t, 36.0, *s.SpeedKMH)
	assert.Equal(t, 4000.0, *s.RPM)
	assert.Nil(t, s.Temperature)

	_, err = parseEngineStatus(map[string]string{"temperature": "hot"})
	assert.Error(t, err)
}

func TestParseBatteryState(t *testing.T) {
	s, err := parseBatteryState(map[string]string{"present": "true", "state": "active", "charge": "87"})
	require.NoError(t, err)
	assert.Equal(t, BatteryState{Present: true, Active: true, Charge: 87}, s)

	s, err = parseBatteryState(map[string]string{"present": "false"})
	require.NoError(t, err)
	assert.Equal(t, BatteryState{}, s)
}

func TestDashboardFields(t *testing.T) {
	doc := display.NewClusterDocument()
	n, ok := doc.Node(display.IDFuelBar)
	require.True(t, ok)
	n.SetStyle("width", "20%")
	n.SetStyle("background", "var(--warning-color)")

	s, ok := doc.Snapshot(display.IDFuelBar)
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{
		"fuel-bar:text":  "",
		"fuel-bar:class": "bar",
		"fuel-bar:style": "width: 20%; background: var(--warning-color)",
	}, dashboardFields(s))

	glyph, ok := doc.Snapshot("lock-icon/icon-symbol")
	require.True(t, ok)
	assert.Contains(t, dashboardFields(glyph), "lock-icon/icon-symbol:text")
}
