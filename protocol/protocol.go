// Package protocol implements the timer telemetry wire format: VLQ encoded
// messages inside CRC16 protected, sync terminated frames.
package protocol

// Version of the telemetry format
const Version = "1"

// Protocol constants
const (
	MessageMax = 256 // Output scratch size, room for several frames

	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10

	// Message sequence masks
	MessageSeqMask = 0x0F
)

// Message identifiers
const (
	MsgStatus = 1
)

// StatusReport is the periodic timer status sent by the board
type StatusReport struct {
	Ticks            uint32
	Seconds          uint32
	ClockTicks       uint32
	ActiveTimers     uint32
	MsDelay          uint32
	UsDelay          uint32
	SpeedFactor      uint32
	DriftCorrections uint32
}

func (r *StatusReport) fields() []*uint32 {
	return []*uint32{
		&r.Ticks,
		&r.Seconds,
		&r.ClockTicks,
		&r.ActiveTimers,
		&r.MsDelay,
		&r.UsDelay,
		&r.SpeedFactor,
		&r.DriftCorrections,
	}
}

// EncodeStatus writes a status message body
func EncodeStatus(output OutputBuffer, r StatusReport) {
	EncodeVLQUint(output, MsgStatus)
	for _, f := range r.fields() {
		EncodeVLQUint(output, *f)
	}
}

// DecodeStatus reads the fields of a status message whose id was already consumed
func DecodeStatus(data *[]byte) (StatusReport, error) {
	var r StatusReport
	for _, f := range r.fields() {
		v, err := DecodeVLQUint(data)
		if err != nil {
			return StatusReport{}, err
		}
		*f = v
	}
	return r, nil
}
