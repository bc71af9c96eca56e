package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Unit tables for the lenient string coercions and for display. Filesize
// accepts both metric (kb) and binary (kib) suffixes; duration uses the
// shell's spelled-out units rather than the stdlib single letters.

var filesizeUnits = []struct {
	suffix string
	mult   int64
}{
	{"kib", 1 << 10},
	{"mib", 1 << 20},
	{"gib", 1 << 30},
	{"tib", 1 << 40},
	{"pib", 1 << 50},
	{"eib", 1 << 60},
	{"kb", 1_000},
	{"mb", 1_000_000},
	{"gb", 1_000_000_000},
	{"tb", 1_000_000_000_000},
	{"pb", 1_000_000_000_000_000},
	{"eb", 1_000_000_000_000_000_000},
	{"b", 1},
}

func parseFilesize(s string) (int64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, u := range filesizeUnits {
		if !strings.HasSuffix(s, u.suffix) {
			continue
		}
		num := strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
		if num == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		return int64(f * float64(u.mult)), true
	}
	return 0, false
}

var durationUnits = []struct {
	suffix string
	mult   int64
}{
	{"sec", int64(time.Second)},
	{"min", int64(time.Minute)},
	{"day", 24 * int64(time.Hour)},
	{"µs", int64(time.Microsecond)},
	{"ns", 1},
	{"us", int64(time.Microsecond)},
	{"ms", int64(time.Millisecond)},
	{"hr", int64(time.Hour)},
	{"wk", 7 * 24 * int64(time.Hour)},
}

func parseDuration(s string) (time.Duration, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, u := range durationUnits {
		if !strings.HasSuffix(s, u.suffix) {
			continue
		}
		num := strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
		if num == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		return time.Duration(f * float64(u.mult)), true
	}
	return 0, false
}

func formatFilesize(bytes int64) string {
	const step = 1024
	abs := bytes
	if abs < 0 {
		abs = -abs
	}
	if abs < step {
		return fmt.Sprintf("%d B", bytes)
	}
	units := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	val := float64(bytes)
	idx := -1
	for abs >= step && idx < len(units)-1 {
		abs /= step
		val /= step
		idx++
	}
	s := strconv.FormatFloat(val, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s + " " + units[idx]
}

func formatDuration(d time.Duration) string {
	n := int64(d)
	if n == 0 {
		return "0sec"
	}
	var b strings.Builder
	if n < 0 {
		b.WriteByte('-')
		n = -n
	}
	parts := []struct {
		name string
		mult int64
	}{
		{"wk", 7 * 24 * int64(time.Hour)},
		{"day", 24 * int64(time.Hour)},
		{"hr", int64(time.Hour)},
		{"min", int64(time.Minute)},
		{"sec", int64(time.Second)},
		{"ms", int64(time.Millisecond)},
		{"µs", int64(time.Microsecond)},
		{"ns", 1},
	}
	first := true
	for _, p := range parts {
		if n < p.mult {
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d%s", n/p.mult, p.name)
		n %= p.mult
		first = false
	}
	return b.String()
}
