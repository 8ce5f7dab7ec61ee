package format

import (
	"testing"
	"time"
)

func TestFileSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{-5, "0 Bytes"},
		{1, "1 Bytes"},
		{512, "512 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1048576, "1 MB"},
		{5242880, "5 MB"},
		{1073741824, "1 GB"},
	}

	for _, tt := range tests {
		if got := FileSize(tt.bytes); got != tt.want {
			t.Errorf("FileSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestTimeFormats(t *testing.T) {
	at := time.Date(2025, 3, 5, 9, 7, 42, 0, time.UTC)

	if got := DateTime(at); got != "2025-03-05 09:07" {
		t.Errorf("DateTime = %q", got)
	}
	if got := ShortDateTime(at); got != "3/5 9:07" {
		t.Errorf("ShortDateTime = %q", got)
	}
	if got := Date(at); got != "2025-03-05" {
		t.Errorf("Date = %q", got)
	}
	if got := ClockTime(at); got != "09:07" {
		t.Errorf("ClockTime = %q", got)
	}
}
