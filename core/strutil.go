package core

// utoa converts an unsigned integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[pos:])
}

// appendPad2 appends n as at least two decimal digits
func appendPad2(buf []byte, n uint32) []byte {
	if n < 10 {
		buf = append(buf, '0')
	}
	return append(buf, utoa(n)...)
}

// FormatElapsed renders seconds and sub-second ticks as HH:MM:SS.hh
func FormatElapsed(seconds, ticks uint32) string {
	second := seconds % 60
	seconds /= 60
	minute := seconds % 60
	hours := seconds / 60

	hundredths := ticks % HZ
	if HZ != 100 {
		hundredths = hundredths * 100 / HZ
	}

	buf := make([]byte, 0, 16)
	buf = appendPad2(buf, hours)
	buf = append(buf, ':')
	buf = appendPad2(buf, minute)
	buf = append(buf, ':')
	buf = appendPad2(buf, second)
	buf = append(buf, '.')
	buf = appendPad2(buf, hundredths)
	return string(buf)
}

// formatSpeedFactor renders a factor scaled by 100 as X.YY
func formatSpeedFactor(factor uint32) string {
	buf := make([]byte, 0, 12)
	buf = append(buf, utoa(factor/100)...)
	buf = append(buf, '.')
	buf = appendPad2(buf, factor%100)
	return string(buf)
}
