// Package format holds the display formatting helpers shared by the
// transport layer and notification messages.
package format

import (
	"fmt"
	"math"
	"time"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FileSize renders a byte count with a binary unit, two decimals max.
func FileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	exp := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if exp >= len(sizeUnits) {
		exp = len(sizeUnits) - 1
	}
	value := math.Round(float64(bytes)/math.Pow(1024, float64(exp))*100) / 100
	return fmt.Sprintf("%g %s", value, sizeUnits[exp])
}

// DateTime renders a full timestamp for user-facing messages.
func DateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// ShortDateTime renders the compact "M/D H:MM" form used in lists.
func ShortDateTime(t time.Time) string {
	return fmt.Sprintf("%d/%d %d:%02d", int(t.Month()), t.Day(), t.Hour(), t.Minute())
}

// Date renders the date part only.
func Date(t time.Time) string {
	return t.Format("2006-01-02")
}

// ClockTime renders the time part only.
func ClockTime(t time.Time) string {
	return t.Format("15:04")
}
