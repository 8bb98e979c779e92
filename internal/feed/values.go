package feed

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParsePrice parses a price field. Norwegian feeds quote "25,90" or
// "kr 25,90"; English exports use "25.90". Currency markers, whitespace and
// percent signs are stripped before parsing.
func ParsePrice(s string) (float64, error) {
	cleaned := strings.TrimSpace(strings.ToLower(s))
	cleaned = strings.TrimPrefix(cleaned, "kr")
	cleaned = strings.TrimSuffix(cleaned, "kr")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	// Comma is the decimal separator unless a dot also appears, in which
	// case the comma groups thousands ("1,299.00").
	if strings.Contains(cleaned, ",") {
		if strings.Contains(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		}
	}

	if cleaned == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

// ParseCoordinate parses a latitude or longitude and range-checks it.
func ParseCoordinate(s string, min, max float64) (float64, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if cleaned == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("out of range: %v", v)
	}
	return v, nil
}

// dateLayouts are the formats seen across chain exports, most common first.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	time.RFC3339,
}

// ParseDate parses an expiry date in any of the known feed formats.
func ParseDate(s string) (time.Time, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty value")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", s)
}

// ParseBoolish interprets the organic flag. Feeds use ja/nei, yes/no,
// true/false, 1/0 or a bare "x"; anything unrecognized counts as false.
func ParseBoolish(s string) bool {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "ja", "yes", "true", "1", "x", "y":
		return true
	default:
		return false
	}
}
