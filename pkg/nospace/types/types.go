// Package types provides size parsing and formatting shared by the nospace
// CLI, configuration and output formatters.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB uint64 = 1024
	MiB uint64 = 1024 * KiB
	GiB uint64 = 1024 * MiB
	TiB uint64 = 1024 * GiB
)

// sizePattern matches size strings like "100000", "30M", "1.5GiB".
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a size string and returns the size in bytes.
// It supports the following formats:
//   - Plain bytes: "70000000", "0"
//   - With byte suffix: "512B"
//   - Binary units: "100K", "50MB", "2GiB", "1T"
//
// Plain integers are parsed exactly. Decimal values with a unit are
// truncated to the nearest byte.
func ParseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n, nil
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier uint64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return uint64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units, e.g. "1.5 MiB".
func FormatSize(bytes uint64) string {
	return humanize.IBytes(bytes)
}

// FormatExact renders a size with thousands separators, e.g. "48,381,165".
func FormatExact(bytes uint64) string {
	return humanize.Comma(int64(bytes))
}
