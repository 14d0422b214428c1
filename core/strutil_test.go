package core

import "testing"

func TestUtoa(t *testing.T) {
	testCases := map[uint32]string{
		0:          "0",
		7:          "7",
		10:         "10",
		350000:     "350000",
		4294967295: "4294967295",
	}
	for in, want := range testCases {
		if got := utoa(in); got != want {
			t.Errorf("utoa(%d): expected %q, got %q", in, want, got)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	testCases := []struct {
		seconds, ticks uint32
		want           string
	}{
		{0, 1, "00:00:00.01"},
		{3661, 366105, "01:01:01.05"},
		{59, 5999, "00:00:59.99"},
		{60, 6000, "00:01:00.00"},
		{100 * 3600, 0, "100:00:00.00"},
	}
	for _, tc := range testCases {
		if got := FormatElapsed(tc.seconds, tc.ticks); got != tc.want {
			t.Errorf("FormatElapsed(%d, %d): expected %q, got %q", tc.seconds, tc.ticks, tc.want, got)
		}
	}
}

func TestFormatSpeedFactor(t *testing.T) {
	testCases := map[uint32]string{
		100: "1.00",
		333: "3.33",
		50:  "0.50",
		205: "2.05",
	}
	for in, want := range testCases {
		if got := formatSpeedFactor(in); got != want {
			t.Errorf("formatSpeedFactor(%d): expected %q, got %q", in, want, got)
		}
	}
}
