package ffmpeg

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var zeroEpoch = time.Unix(0, 0).UTC()

// FormatTime renders a seconds offset as HH:MM:SS. The offset is added to
// the zero epoch and the clock part is printed, so values of 24h or more
// wrap around. Fractions of a second are truncated.
func FormatTime(seconds float64) string {
	return zeroEpoch.Add(time.Duration(seconds * float64(time.Second))).Format("15:04:05")
}

// ParseTimestamp parses HH:MM:SS, MM:SS or raw seconds into seconds. Hours
// and minutes are whole numbers; the seconds part may be fractional.
func ParseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("expected HH:MM:SS, MM:SS, or seconds, got '%s'", s)
	}

	sec, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil || sec < 0 || math.IsInf(sec, 0) || math.IsNaN(sec) {
		return 0, fmt.Errorf("expected HH:MM:SS, MM:SS, or seconds, got '%s'", s)
	}
	total := sec
	scale := 60.0
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.ParseUint(parts[i], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("expected HH:MM:SS, MM:SS, or seconds, got '%s'", s)
		}
		total += float64(n) * scale
		scale *= 60
	}
	return total, nil
}
