package ports

import "context"

// Fields is the untyped payload returned by the Text Oracle. The oracle
// declares a schema in its instruction text, but nothing guarantees the
// response honors it, so every access goes through a defaulted getter.
type Fields map[string]any

// Str returns the string at key, or def when the key is missing or not
// a string.
func (f Fields) Str(key, def string) string {
	v, ok := f[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return def
	}
	return s
}

// Int returns the integer at key, or def when the key is missing or not
// numeric. JSON decoding yields float64 for all numbers.
func (f Fields) Int(key string, def int) int {
	v, ok := f[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

// TextOracle generates structured fortune content from a system
// instruction and a user prompt.
type TextOracle interface {
	Generate(ctx context.Context, systemInstruction, userPrompt string) (Fields, error)
}

// ImageOracle generates an image for a prompt and returns its URL.
// Slow and best-effort; callers degrade to text-only on failure.
type ImageOracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
