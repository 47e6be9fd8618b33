// Package attrs reads values back out of slog-style key/value argument lists,
// the form the lottery service passes to its audit logger.
package attrs

// ExtractString returns the string stored under key in a [k1, v1, k2, v2, ...]
// list, or "" when the key is absent or its value is not a string.
func ExtractString(kv []any, key string) string {
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok && k == key {
			v, _ := kv[i+1].(string)
			return v
		}
	}
	return ""
}

// ExtractFirst returns the first non-empty string among keys, in the order
// given. Audit events use it to pick the participant, winner or admin an event
// is about.
func ExtractFirst(kv []any, keys ...string) string {
	for _, key := range keys {
		if v := ExtractString(kv, key); v != "" {
			return v
		}
	}
	return ""
}
