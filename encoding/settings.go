// SPDX-License-Identifier: EPL-2.0

package encoding

import "log/slog"

// Settings is an opaque key/value configuration map passed unmodified
// from caller to backend. Keys are namespaced per backend (for example
// "flac:blocksize" or "opus:bitrate"); each backend reads only the keys
// it recognizes.
//
// Absent, mistyped, or out-of-range values never fail an operation: the
// typed getters fall back to a documented default and log the problem.
type Settings map[string]any

// Int returns the integer value for key, or def when the key is absent
// or not an integer. Float values with an integral representation are
// accepted, as callers frequently build Settings from decoded JSON.
func (s Settings) Int(key string, def int, logger *slog.Logger) int {
	v, ok := s[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	}
	logValue(logger, "ignoring non-integer setting", key, v, def)
	return def
}

// IntInRange returns the integer value for key clamped to [lo, hi], or
// def when the key is absent or not an integer. Out-of-range values are
// logged and replaced with def, never propagated.
func (s Settings) IntInRange(key string, def, lo, hi int, logger *slog.Logger) int {
	n := s.Int(key, def, logger)
	if n < lo || n > hi {
		logValue(logger, "ignoring out-of-range setting", key, n, def)
		return def
	}
	return n
}

// Float returns the float value for key, or def.
func (s Settings) Float(key string, def float64, logger *slog.Logger) float64 {
	v, ok := s[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	}
	logValue(logger, "ignoring non-numeric setting", key, v, def)
	return def
}

// Bool returns the boolean value for key, or def.
func (s Settings) Bool(key string, def bool, logger *slog.Logger) bool {
	v, ok := s[key]
	if !ok {
		return def
	}
	if b, ok := v.(bool); ok {
		return b
	}
	logValue(logger, "ignoring non-boolean setting", key, v, def)
	return def
}

// String returns the string value for key, or def.
func (s Settings) String(key string, def string, logger *slog.Logger) string {
	v, ok := s[key]
	if !ok {
		return def
	}
	if t, ok := v.(string); ok {
		return t
	}
	logValue(logger, "ignoring non-string setting", key, v, def)
	return def
}

// LogUnrecognized emits a diagnostic for every key the backend does not
// recognize. Unrecognized keys are never an error.
func (s Settings) LogUnrecognized(logger *slog.Logger, recognized ...string) {
	for key := range s {
		known := false
		for _, k := range recognized {
			if key == k {
				known = true
				break
			}
		}
		if !known {
			if logger == nil {
				logger = slog.Default()
			}
			logger.Debug("ignoring unrecognized setting", "key", key)
		}
	}
}

func logValue(logger *slog.Logger, msg, key string, got, def any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn(msg, "key", key, "value", got, "default", def)
}
