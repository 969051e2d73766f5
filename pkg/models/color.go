package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ThemeAlpha is the background alpha used for tag chips in the given theme.
func ThemeAlpha(theme string) float64 {
	if theme == "dark" {
		return 0.5
	}
	return 0.2
}

// HexToRGBA converts a #rrggbb color into an rgba() string. Malformed
// components are treated as zero.
func HexToRGBA(hex string, alpha float64) string {
	hex = strings.TrimPrefix(hex, "#")
	component := func(i int) int64 {
		if len(hex) < i+2 {
			return 0
		}
		v, err := strconv.ParseInt(hex[i:i+2], 16, 64)
		if err != nil {
			return 0
		}
		return v
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", component(0), component(2), component(4),
		strconv.FormatFloat(alpha, 'f', -1, 64))
}

// ValidColor reports whether s looks like #rrggbb.
func ValidColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	_, err := strconv.ParseUint(s[1:], 16, 32)
	return err == nil
}
