package source

import (
	"regexp"
	"strconv"
	"strings"
)

var heatValueRe = regexp.MustCompile(`^([\d.]+)\s*(万|亿)?`)

// parseHeatText converts a display heat string such as "233万" or "1.2亿"
// into an absolute value. Unparseable text yields 0.
func parseHeatText(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	m := heatValueRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}

	switch m[2] {
	case "万":
		value *= 10_000
	case "亿":
		value *= 100_000_000
	}
	return value
}
