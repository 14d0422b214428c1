package protocol

import "errors"

var (
	ErrVLQTruncated = errors.New("vlq: input ends inside a value")
	ErrVLQTooLong   = errors.New("vlq: value longer than 5 bytes")
)

// vlqMaxBytes covers 32 bits at 7 bits per byte
const vlqMaxBytes = 5

// EncodeVLQInt writes v high group first, 7 bits per byte, with the top
// bit marking continuation. A group is only emitted when the value does
// not fit the shorter form; the first byte's bits 5 and 6 carry the sign.
func EncodeVLQInt(output OutputBuffer, v int32) {
	var buf [vlqMaxBytes]byte
	n := 0
	for shift := 28; shift > 0; shift -= 7 {
		limit := int32(1) << (shift - 2)
		if v < -limit || v >= 3*limit {
			buf[n] = byte(v>>shift)&0x7F | 0x80
			n++
		}
	}
	buf[n] = byte(v) & 0x7F
	n++
	output.Output(buf[:n])
}

// EncodeVLQUint writes the two's complement bit pattern of v
func EncodeVLQUint(output OutputBuffer, v uint32) {
	EncodeVLQInt(output, int32(v))
}

// DecodeVLQInt reads one value and advances data past it. On error data
// is left untouched.
func DecodeVLQInt(data *[]byte) (int32, error) {
	in := *data
	var v uint32
	for i, c := range in {
		if i == vlqMaxBytes {
			return 0, ErrVLQTooLong
		}
		if i == 0 {
			v = uint32(c & 0x7F)
			if c&0x60 == 0x60 {
				v |= ^uint32(0x1F)
			}
		} else {
			v = v<<7 | uint32(c&0x7F)
		}
		if c&0x80 == 0 {
			*data = in[i+1:]
			return int32(v), nil
		}
	}
	return 0, ErrVLQTruncated
}

func DecodeVLQUint(data *[]byte) (uint32, error) {
	v, err := DecodeVLQInt(data)
	return uint32(v), err
}
