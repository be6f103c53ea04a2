package config

import (
	"strings"

	"github.com/labstack/gommon/log"
)

// ParseLevel maps LOG_LEVEL values to gommon levels. Unknown values mean
// INFO.
func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
