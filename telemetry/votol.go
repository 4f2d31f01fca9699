package telemetry

import (
	"encoding/binary"

	"github.com/brutella/can"
)

const (
	VotolControllerDisplayID = 0x90261022
	VotolControllerStatusID  = 0x90261023
)

type votolDecoder struct {
	baseDecoder
}

func newVotolDecoder(sink Sink, logger Logger) *votolDecoder {
	return &votolDecoder{baseDecoder: newBaseDecoder(sink, logger)}
}

func (v *votolDecoder) HandleFrame(frame can.Frame) error {
	v.mu.Lock()
	v.touch(frame)

	var u update
	switch frame.ID {
	case VotolControllerDisplayID:
		u = v.handleControllerDisplayFrame(frame)
	case VotolControllerStatusID:
		u = v.handleControllerStatusFrame(frame)
	}
	r := v.reading
	v.mu.Unlock()

	v.forward(u, r)
	return nil
}

func (v *votolDecoder) handleControllerDisplayFrame(frame can.Frame) update {
	if frame.Length < 8 {
		return 0
	}

	v.reading.RPM = binary.LittleEndian.Uint16(frame.Data[2:4])

	// The controller sends no speed, derive it from the motor RPM
	v.reading.RawSpeed = v.reading.RPM
	v.reading.Speed = uint16(float64(v.reading.RPM) * RPMToSpeedFactor)

	return updateSpeed | updateRPM
}

func (v *votolDecoder) handleControllerStatusFrame(frame can.Frame) update {
	if frame.Length < 8 {
		return 0
	}

	v.reading.Temperature = int8(frame.Data[0])

	// Always updated so faults can clear
	v.reading.FaultCode = uint32(frame.Data[6])

	return updateHealth
}

func (v *votolDecoder) ActiveFaults() []Fault {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var faults []Fault
	for bit := 0; bit < 8; bit++ {
		mask := uint32(1) << bit
		if v.reading.FaultCode&mask == 0 {
			continue
		}
		if f := votolFault(mask); f != FaultNone {
			faults = append(faults, f)
		}
	}
	return faults
}
