package provider

import "time"

// ConfigString returns cfg[key] when it is a string.
func ConfigString(cfg map[string]any, key string) string {
	v, _ := cfg[key].(string)
	return v
}

// ConfigBool returns cfg[key] when it is a bool, otherwise def.
func ConfigBool(cfg map[string]any, key string, def bool) bool {
	if v, ok := cfg[key].(bool); ok {
		return v
	}
	return def
}

// ConfigDuration returns cfg[key] as a duration. Strings are parsed with
// time.ParseDuration; anything else yields zero.
func ConfigDuration(cfg map[string]any, key string) time.Duration {
	switch v := cfg[key].(type) {
	case time.Duration:
		return v
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0
		}
		return d
	default:
		return 0
	}
}
