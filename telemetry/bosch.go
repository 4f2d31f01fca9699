package telemetry

import (
	"encoding/binary"

	"github.com/brutella/can"
)

const (
	BoschStatus1FrameID = 0x7E0
	BoschStatus2FrameID = 0x7E1
)

type boschDecoder struct {
	baseDecoder
}

func newBoschDecoder(sink Sink, logger Logger) *boschDecoder {
	return &boschDecoder{baseDecoder: newBaseDecoder(sink, logger)}
}

func (b *boschDecoder) HandleFrame(frame can.Frame) error {
	b.mu.Lock()
	b.touch(frame)

	var u update
	switch frame.ID {
	case BoschStatus1FrameID:
		u = b.handleStatus1Frame(frame)
	case BoschStatus2FrameID:
		u = b.handleStatus2Frame(frame)
	}
	r := b.reading
	b.mu.Unlock()

	b.forward(u, r)
	return nil
}

func (b *boschDecoder) handleStatus1Frame(frame can.Frame) update {
	if frame.Length < 8 {
		return 0
	}

	b.reading.RPM = binary.BigEndian.Uint16(frame.Data[4:6])

	b.reading.RawSpeed = uint16(frame.Data[6])
	b.reading.Speed = b.calculateSpeed(b.reading.RawSpeed)

	return updateSpeed | updateRPM
}

func (b *boschDecoder) handleStatus2Frame(frame can.Frame) update {
	if frame.Length < 6 {
		return 0
	}

	b.reading.Temperature = int8(frame.Data[0])
	b.reading.FaultCode = binary.BigEndian.Uint32(frame.Data[2:6])

	return updateHealth
}

func (b *boschDecoder) ActiveFaults() []Fault {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if f := boschFault(b.reading.FaultCode); f != FaultNone {
		return []Fault{f}
	}
	return nil
}
