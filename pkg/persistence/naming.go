package persistence

import (
	"iter"
	"strconv"
	"strings"
)

const (
	// SettingsPrefix names versioned settings files.
	SettingsPrefix = "settings_"
	// ResultsPrefix names versioned results files.
	ResultsPrefix = "results_"
	// Ext is appended to generated names.
	Ext = ".json"
)

// Version returns the number following prefix in name. Only the leading
// digits count: "settings_12.json" and "settings_12" are both version 12.
// ok is false when name does not start with prefix followed by a digit.
func Version(name, prefix string) (int, bool) {
	rest, found := strings.CutPrefix(name, prefix)
	if !found {
		return 0, false
	}
	n := 0
	for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
		n++
	}
	if n == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(rest[:n])
	if err != nil {
		return 0, false
	}
	return v, true
}

// Latest scans names once and returns the one with the highest version.
func Latest(names iter.Seq[string], prefix string) (name string, version int, ok bool) {
	version = -1
	for n := range names {
		v, match := Version(n, prefix)
		if match && v > version {
			name, version = n, v
		}
	}
	if version < 0 {
		return "", 0, false
	}
	return name, version, true
}

// NextName returns prefix + (highest version + 1) + Ext, or prefix + "0" +
// Ext when no name matches.
func NextName(names iter.Seq[string], prefix string) string {
	next := 0
	if _, v, ok := Latest(names, prefix); ok {
		next = v + 1
	}
	return prefix + strconv.Itoa(next) + Ext
}
