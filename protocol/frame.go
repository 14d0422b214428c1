package protocol

import "errors"

var (
	ErrFrameTooLarge  = errors.New("frame exceeds maximum message length")
	ErrUnknownMessage = errors.New("unknown message id")
)

// FrameHandler receives the payload of every valid frame
type FrameHandler func(seq uint8, payload []byte)

// EncodeFrame wraps the bytes written by payload in a frame with sequence seq
func EncodeFrame(output OutputBuffer, seq uint8, payload func(output OutputBuffer)) error {
	cursor := output.CurPosition()

	// length placeholder, patched once the payload size is known
	output.Output([]byte{0, MessageDest | (seq & MessageSeqMask)})
	payload(output)

	length := len(output.DataSince(cursor)) + MessageTrailerSize
	if length > MessageLengthMax {
		return ErrFrameTooLarge
	}
	output.Update(cursor, uint8(length))

	crc := CRC16(output.DataSince(cursor))
	output.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})
	return nil
}

// Decoder splits a byte stream into frames, resynchronising on the sync
// byte after corruption
type Decoder struct {
	synchronized bool
	handler      FrameHandler

	// Frames counts valid frames, Dropped counts discarded ones
	Frames  uint32
	Dropped uint32
}

// NewDecoder creates a decoder that passes valid frames to handler
func NewDecoder(handler FrameHandler) *Decoder {
	return &Decoder{
		synchronized: true,
		handler:      handler,
	}
}

// Receive consumes as many complete frames from input as possible.
// Partial frames are left in input for the next call.
func (d *Decoder) Receive(input InputBuffer) {
	data := input.Data()

	for len(data) > 0 {
		if !d.synchronized {
			// Look for sync byte to resynchronize
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}

			if syncPos < 0 {
				data = nil
				break
			}
			data = data[syncPos+1:]
			d.synchronized = true
			continue
		}

		// Skip leading sync bytes
		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}

		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			d.desync()
			continue
		}

		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			d.desync()
			continue
		}

		// Wait for full message
		if len(data) < msgLen {
			break
		}

		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.desync()
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.desync()
			continue
		}

		payload := data[MessageHeaderSize : msgLen-MessageTrailerSize]
		data = data[msgLen:]

		d.Frames++
		if d.handler != nil {
			d.handler(seq&MessageSeqMask, payload)
		}
	}

	consumed := input.Available() - len(data)
	if consumed > 0 {
		input.Pop(consumed)
	}
}

func (d *Decoder) desync() {
	d.synchronized = false
	d.Dropped++
}

// StatusHandler adapts a status callback to a FrameHandler; frames holding
// other messages or malformed fields are reported through onErr
func StatusHandler(onStatus func(seq uint8, r StatusReport), onErr func(error)) FrameHandler {
	if onErr == nil {
		onErr = func(error) {}
	}
	return func(seq uint8, payload []byte) {
		for len(payload) > 0 {
			id, err := DecodeVLQUint(&payload)
			if err != nil {
				onErr(err)
				return
			}
			if id != MsgStatus {
				onErr(ErrUnknownMessage)
				return
			}
			r, err := DecodeStatus(&payload)
			if err != nil {
				onErr(err)
				return
			}
			onStatus(seq, r)
		}
	}
}
