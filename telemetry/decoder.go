package telemetry

import (
	"fmt"
	"sync"
	"time"

	"github.com/brutella/can"
)

const (
	SpeedToleranceFactor = 1.155556
	CalibrationFactor    = 1.03
	RPMToSpeedFactor     = 0.0783744

	// Window size for speed averaging
	WindowSize = 3

	// If no frames arrive within this time the data is considered stale
	DataTimeout = 2 * time.Second
)

// DecoderType selects the controller protocol
type DecoderType int

const (
	DecoderBosch DecoderType = iota
	DecoderVotol
)

func (t DecoderType) String() string {
	switch t {
	case DecoderVotol:
		return "votol"
	default:
		return "bosch"
	}
}

// ParseDecoderType accepts "bosch" or "votol"
func ParseDecoderType(s string) (DecoderType, error) {
	switch s {
	case "bosch":
		return DecoderBosch, nil
	case "votol":
		return DecoderVotol, nil
	}
	return DecoderBosch, fmt.Errorf("invalid ECU type: %s (must be 'bosch' or 'votol')", s)
}

// Reading is the last decoded controller state
type Reading struct {
	Speed       uint16 // km/h after calibration
	RawSpeed    uint16
	RPM         uint16
	Temperature int8
	FaultCode   uint32
}

// Decoder turns controller CAN frames into sink updates
type Decoder interface {
	// HandleFrame decodes frame and forwards what changed to the sink
	HandleFrame(frame can.Frame) error

	// IsDataStale reports whether no frame arrived within DataTimeout
	IsDataStale() bool

	// Reading returns the last decoded values
	Reading() Reading

	// ActiveFaults returns the faults in the last status frame
	ActiveFaults() []Fault
}

// NewDecoder creates a decoder of type t feeding sink
func NewDecoder(t DecoderType, sink Sink, logger Logger) (Decoder, error) {
	if logger == nil {
		logger = nopLogger{}
	}
	switch t {
	case DecoderBosch:
		logger.Info("Creating Bosch decoder")
		return newBoschDecoder(sink, logger), nil
	case DecoderVotol:
		logger.Info("Creating Votol decoder")
		return newVotolDecoder(sink, logger), nil
	default:
		return nil, fmt.Errorf("unknown ECU type: %v", t)
	}
}

// update flags which sink operations a frame touched
type update uint8

const (
	updateSpeed update = 1 << iota
	updateRPM
	updateHealth
)

// baseDecoder holds what both protocols share
type baseDecoder struct {
	mu            sync.RWMutex
	sink          Sink
	logger        Logger
	now           func() time.Time
	lastFrameTime time.Time
	speedBuffer   SpeedBuffer
	reading       Reading
}

func newBaseDecoder(sink Sink, logger Logger) baseDecoder {
	return baseDecoder{
		sink:          sink,
		logger:        logger,
		now:           time.Now,
		lastFrameTime: time.Now(),
	}
}

// SpeedBuffer implements a moving average for speed readings
type SpeedBuffer struct {
	data  [WindowSize]uint16
	head  uint8
	count uint8
	sum   uint16
}

func (buf *SpeedBuffer) Reset() {
	*buf = SpeedBuffer{}
}

func (buf *SpeedBuffer) MovingAverage(speed uint16) float64 {
	var lastData uint16
	if buf.count >= WindowSize {
		buf.count = WindowSize
		lastData = buf.data[buf.head]
	} else {
		buf.count++
	}

	buf.data[buf.head] = speed
	buf.sum = (buf.sum - lastData) + speed
	average := float64(buf.sum) / float64(buf.count)
	buf.head = (buf.head + 1) % WindowSize

	return average
}

// calculateSpeed applies averaging and calibration to a raw km/h reading.
// A zero reading resets the window.
func (b *baseDecoder) calculateSpeed(rawSpeed uint16) uint16 {
	if rawSpeed == 0 {
		b.speedBuffer.Reset()
		return 0
	}

	avgSpeed := b.speedBuffer.MovingAverage(rawSpeed)
	return uint16(avgSpeed * CalibrationFactor * SpeedToleranceFactor)
}

// touch records the arrival of a frame. Callers hold the lock.
func (b *baseDecoder) touch(frame can.Frame) {
	b.lastFrameTime = b.now()
	debugCANFrame(b.logger, "RX", frame.ID, frame.Data, frame.Length)
}

func (b *baseDecoder) IsDataStale() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.now().Sub(b.lastFrameTime) > DataTimeout
}

func (b *baseDecoder) Reading() Reading {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.reading
}

// forward pushes the touched values to the sink, outside the decoder lock
func (b *baseDecoder) forward(u update, r Reading) {
	if b.sink == nil {
		return
	}
	if u&updateSpeed != 0 {
		b.sink.SetSpeed(KMHToMetersPerSecond(float64(r.Speed)))
	}
	if u&updateRPM != 0 {
		b.sink.SetRPM(NormalizeRPM(float64(r.RPM)))
	}
	if u&updateHealth != 0 {
		b.sink.SetHealth(HealthFromTemperature(float64(r.Temperature)))
	}
}
