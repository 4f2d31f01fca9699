package telemetry

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"cluster-service/cluster"

	"github.com/brutella/can"
)

// testLogger implements Logger for testing
type testLogger struct{}

func (l *testLogger) Printf(format string, v ...interface{}) {}
func (l *testLogger) Debug(format string, v ...interface{})  {}
func (l *testLogger) Info(format string, v ...interface{})   {}
func (l *testLogger) Warn(format string, v ...interface{})   {}
func (l *testLogger) Error(format string, v ...interface{})  {}
func (l *testLogger) DebugCAN(direction string, id uint32, data []byte, length uint8) {
}

// recordingSink remembers the calls a decoder makes
type recordingSink struct {
	calls  []string
	speed  float64
	rpm    float64
	health float64
}

func (s *recordingSink) SetEngineState(on bool) { s.calls = append(s.calls, "engine") }
func (s *recordingSink) SetSpeed(v float64) {
	s.calls = append(s.calls, "speed")
	s.speed = v
}
func (s *recordingSink) SetRPM(v float64) {
	s.calls = append(s.calls, "rpm")
	s.rpm = v
}
func (s *recordingSink) SetFuel(v float64) { s.calls = append(s.calls, "fuel") }
func (s *recordingSink) SetHealth(v float64) {
	s.calls = append(s.calls, "health")
	s.health = v
}
func (s *recordingSink) SetGear(gear int)                           { s.calls = append(s.calls, "gear") }
func (s *recordingSink) SetHeadlights(state cluster.HeadlightState) { s.calls = append(s.calls, "headlights") }
func (s *recordingSink) SetLeftIndicator(on bool)                   { s.calls = append(s.calls, "indicator-left") }
func (s *recordingSink) SetRightIndicator(on bool)                  { s.calls = append(s.calls, "indicator-right") }
func (s *recordingSink) SetSeatbelts(fastened bool)                 { s.calls = append(s.calls, "seatbelts") }
func (s *recordingSink) SetSpeedMode(mode cluster.SpeedMode)        { s.calls = append(s.calls, "speed-mode") }
func (s *recordingSink) SetDoors(closed bool)                       { s.calls = append(s.calls, "doors") }
func (s *recordingSink) SetLocks(locked bool)                       { s.calls = append(s.calls, "locks") }

func makeCANFrame(id uint32, data []byte) can.Frame {
	f := can.Frame{
		ID:     id,
		Length: uint8(len(data)),
	}
	copy(f.Data[:], data)
	return f
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// --- SpeedBuffer tests ---

func TestSpeedBuffer_SingleValue(t *testing.T) {
	var buf SpeedBuffer
	avg := buf.MovingAverage(100)
	if avg != 100.0 {
		t.Errorf("expected 100.0, got %f", avg)
	}
}

func TestSpeedBuffer_WindowSlide(t *testing.T) {
	var buf SpeedBuffer
	buf.MovingAverage(100)
	buf.MovingAverage(200)
	if avg := buf.MovingAverage(300); avg != 200.0 {
		t.Errorf("expected 200.0, got %f", avg)
	}
	// replaces 100: [400, 200, 300]
	if avg := buf.MovingAverage(400); avg != 300.0 {
		t.Errorf("expected 300.0, got %f", avg)
	}
}

func TestSpeedBuffer_Reset(t *testing.T) {
	var buf SpeedBuffer
	buf.MovingAverage(100)
	buf.MovingAverage(200)
	buf.Reset()
	avg := buf.MovingAverage(50)
	if avg != 50.0 {
		t.Errorf("expected 50.0 after reset, got %f", avg)
	}
}

// --- calculateSpeed tests ---

func TestCalculateSpeed_NonZero(t *testing.T) {
	b := &baseDecoder{}
	speed := b.calculateSpeed(100)
	// 100 * 1.03 * 1.155556 = ~119
	if speed != 119 {
		t.Errorf("expected 119, got %d", speed)
	}
}

func TestCalculateSpeed_ZeroResetsBuffer(t *testing.T) {
	b := &baseDecoder{}
	b.calculateSpeed(100)
	b.calculateSpeed(200)
	if speed := b.calculateSpeed(0); speed != 0 {
		t.Errorf("expected 0 for zero input, got %d", speed)
	}
	// 50 * 1.03 * 1.155556 = ~59.5
	if speed := b.calculateSpeed(50); speed != 59 {
		t.Errorf("expected 59, got %d", speed)
	}
}

// --- Bosch tests ---

func newTestBosch() (*boschDecoder, *recordingSink) {
	sink := &recordingSink{}
	return newBoschDecoder(sink, &testLogger{}), sink
}

func TestBoschStatus1_Parse(t *testing.T) {
	b, sink := newTestBosch()
	data := make([]byte, 8)
	binary.BigEndian.PutUint16(data[4:6], 3000)
	data[6] = 45

	if err := b.HandleFrame(makeCANFrame(BoschStatus1FrameID, data)); err != nil {
		t.Fatalf("HandleFrame error: %v", err)
	}

	r := b.Reading()
	if r.RPM != 3000 {
		t.Errorf("RPM: expected 3000, got %d", r.RPM)
	}
	if r.RawSpeed != 45 {
		t.Errorf("raw speed: expected 45, got %d", r.RawSpeed)
	}
	// 45 * 1.03 * 1.155556 = ~53.6
	if r.Speed != 53 {
		t.Errorf("speed: expected 53, got %d", r.Speed)
	}
	if !almostEqual(sink.speed, 53/3.6) {
		t.Errorf("sink speed: expected %f, got %f", 53/3.6, sink.speed)
	}
	if !almostEqual(sink.rpm, 0.375) {
		t.Errorf("sink rpm: expected 0.375, got %f", sink.rpm)
	}
	if len(sink.calls) != 2 {
		t.Errorf("expected 2 sink calls, got %v", sink.calls)
	}
}

func TestBoschStatus1_ShortFrame(t *testing.T) {
	b, sink := newTestBosch()

	if err := b.HandleFrame(makeCANFrame(BoschStatus1FrameID, make([]byte, 4))); err != nil {
		t.Fatalf("HandleFrame error: %v", err)
	}

	if len(sink.calls) != 0 {
		t.Errorf("short frame should not reach the sink, got %v", sink.calls)
	}
	if b.Reading() != (Reading{}) {
		t.Errorf("reading should stay zero, got %+v", b.Reading())
	}
}

func TestBoschStatus2_Parse(t *testing.T) {
	b, sink := newTestBosch()
	data := make([]byte, 6)
	data[0] = 85
	binary.BigEndian.PutUint32(data[2:6], 0x03)

	if err := b.HandleFrame(makeCANFrame(BoschStatus2FrameID, data)); err != nil {
		t.Fatalf("HandleFrame error: %v", err)
	}

	if b.Reading().Temperature != 85 {
		t.Errorf("temperature: expected 85, got %d", b.Reading().Temperature)
	}
	if !almostEqual(sink.health, 0.5) {
		t.Errorf("health: expected 0.5, got %f", sink.health)
	}
	faults := b.ActiveFaults()
	if len(faults) != 1 || faults[0] != FaultMotorShortCircuit {
		t.Errorf("expected [FaultMotorShortCircuit], got %v", faults)
	}
}

func TestBoschStatus2_NegativeTemperature(t *testing.T) {
	b, sink := newTestBosch()
	data := make([]byte, 6)
	data[0] = 0xF6 // -10°C

	b.HandleFrame(makeCANFrame(BoschStatus2FrameID, data))

	if b.Reading().Temperature != -10 {
		t.Errorf("temperature: expected -10, got %d", b.Reading().Temperature)
	}
	if sink.health != 0 {
		t.Errorf("health: expected 0, got %f", sink.health)
	}
	if len(b.ActiveFaults()) != 0 {
		t.Errorf("expected no faults, got %v", b.ActiveFaults())
	}
}

func TestBoschUnknownFrame(t *testing.T) {
	b, sink := newTestBosch()

	if err := b.HandleFrame(makeCANFrame(0x123, make([]byte, 8))); err != nil {
		t.Fatalf("unknown frame should not error, got: %v", err)
	}
	if len(sink.calls) != 0 {
		t.Errorf("unknown frame should not reach the sink, got %v", sink.calls)
	}
}

// --- Votol tests ---

func newTestVotol() (*votolDecoder, *recordingSink) {
	sink := &recordingSink{}
	return newVotolDecoder(sink, &testLogger{}), sink
}

func TestVotolControllerDisplay_Parse(t *testing.T) {
	v, sink := newTestVotol()
	data := make([]byte, 8)
	binary.LittleEndian.PutUint16(data[2:4], 2000)

	if err := v.HandleFrame(makeCANFrame(VotolControllerDisplayID, data)); err != nil {
		t.Fatalf("HandleFrame error: %v", err)
	}

	r := v.Reading()
	if r.RPM != 2000 {
		t.Errorf("RPM: expected 2000, got %d", r.RPM)
	}
	// 2000 * 0.0783744 = 156.7
	if r.Speed != 156 {
		t.Errorf("speed: expected 156, got %d", r.Speed)
	}
	if !almostEqual(sink.rpm, 0.25) {
		t.Errorf("sink rpm: expected 0.25, got %f", sink.rpm)
	}
}

func TestVotolControllerStatus_Faults(t *testing.T) {
	v, sink := newTestVotol()
	data := make([]byte, 8)
	data[0] = 80
	data[6] = 0x21

	v.HandleFrame(makeCANFrame(VotolControllerStatusID, data))

	if !almostEqual(sink.health, 10.0/30.0) {
		t.Errorf("health: expected %f, got %f", 10.0/30.0, sink.health)
	}
	faults := v.ActiveFaults()
	if len(faults) != 2 || faults[0] != FaultMotorStalled || faults[1] != FaultOverTemperature {
		t.Errorf("expected [FaultMotorStalled FaultOverTemperature], got %v", faults)
	}

	// Faults clear with the next status frame
	data[6] = 0
	v.HandleFrame(makeCANFrame(VotolControllerStatusID, data))
	if len(v.ActiveFaults()) != 0 {
		t.Errorf("expected faults to clear, got %v", v.ActiveFaults())
	}
}

func TestVotolShortFrame(t *testing.T) {
	v, sink := newTestVotol()

	v.HandleFrame(makeCANFrame(VotolControllerDisplayID, make([]byte, 7)))

	if len(sink.calls) != 0 {
		t.Errorf("short frame should not reach the sink, got %v", sink.calls)
	}
}

// --- Stale data ---

func TestIsDataStale(t *testing.T) {
	b, _ := newTestBosch()
	clock := time.Unix(1000, 0)
	b.now = func() time.Time { return clock }
	b.lastFrameTime = clock

	if b.IsDataStale() {
		t.Error("fresh decoder should not be stale")
	}

	clock = clock.Add(DataTimeout + time.Millisecond)
	if !b.IsDataStale() {
		t.Error("expected stale data after timeout")
	}

	b.HandleFrame(makeCANFrame(0x123, nil))
	if b.IsDataStale() {
		t.Error("any frame should refresh the timestamp")
	}
}

func TestNewDecoder(t *testing.T) {
	sink := &recordingSink{}

	d, err := NewDecoder(DecoderVotol, sink, nil)
	if err != nil {
		t.Fatalf("NewDecoder error: %v", err)
	}
	if _, ok := d.(*votolDecoder); !ok {
		t.Errorf("expected votol decoder, got %T", d)
	}

	if _, err := NewDecoder(DecoderType(9), sink, nil); err == nil {
		t.Error("expected error for unknown decoder type")
	}
}

func TestParseDecoderType(t *testing.T) {
	tests := []struct {
		in       string
		expected DecoderType
		wantErr  bool
	}{
		{"bosch", DecoderBosch, false},
		{"votol", DecoderVotol, false},
		{"unu", DecoderBosch, true},
	}

	for _, tt := range tests {
		got, err := ParseDecoderType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDecoderType(%q): unexpected error %v", tt.in, err)
		}
		if got != tt.expected {
			t.Errorf("ParseDecoderType(%q): expected %v, got %v", tt.in, tt.expected, got)
		}
	}
}
