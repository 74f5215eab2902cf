package orderview

import (
	"strings"
	"unicode/utf8"
)

// NumberFormat selects how order numbers are displayed.
type NumberFormat string

const (
	FormatORD NumberFormat = "ORD"
	FormatTS  NumberFormat = "TS"
)

// PlaceholderOrderNumber is returned for a missing id.
const PlaceholderOrderNumber = "ORD-000000-0000"

// ParseNumberFormat maps a stored preference to a format, defaulting to ORD.
func ParseNumberFormat(s string) NumberFormat {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatTS)) {
		return FormatTS
	}
	return FormatORD
}

// FormatOrderNumber derives the display number for rawID. Values that are
// already formatted are returned unchanged.
//
// The ORD block boundaries follow negative-index slicing ([-10:-4] and
// [-4:]); ids shorter than ten characters therefore produce a short first
// block, which is zero-padded rather than re-derived.
func FormatOrderNumber(rawID string, format NumberFormat) string {
	if rawID == "" {
		return PlaceholderOrderNumber
	}
	if strings.HasPrefix(rawID, "ORD-") || strings.HasPrefix(rawID, "TS") {
		return rawID
	}
	id := []rune(rawID)
	if format == FormatTS {
		return "TS" + padLeft(slice(id, -8, len(id)), 8)
	}
	return "ORD-" + padLeft(slice(id, -10, -4), 6) + "-" + padLeft(slice(id, -4, len(id)), 4)
}

// slice mimics string slicing with negative indices counted from the end,
// indexing characters rather than bytes. Out-of-range bounds clamp; an
// inverted range is empty.
func slice(s []rune, start, end int) string {
	n := len(s)
	start = clamp(start, n)
	end = clamp(end, n)
	if start >= end {
		return ""
	}
	return string(s[start:end])
}

func clamp(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
	}
	if i > n {
		return n
	}
	return i
}

func padLeft(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat("0", width-n) + s
}
