package protocol

// CRC16 is the CRC-16/MCRF4XX checksum over a frame's length, sequence and
// payload bytes (reflected CCITT polynomial, seed 0xFFFF, no final xor)
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		x := b ^ byte(crc)
		x ^= x << 4
		w := uint16(x)
		crc = (w<<8 | crc>>8) ^ w>>4 ^ w<<3
	}
	return crc
}
