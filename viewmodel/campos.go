// Package viewmodel normalizes the loosely-typed records returned by the
// upstream care-facility API into the canonical shapes the panel renders.
// The backend went through several schema revisions and different endpoints
// still return different field names for the same concept, so every
// canonical field is resolved through an ordered list of candidate keys.
// Normalization never fails: missing or malformed fields degrade to safe
// defaults (empty string, "now", nil) instead of dropping the record.
package viewmodel

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// isoMillis renders timestamps the way the panel always displayed them:
// UTC with millisecond precision and a literal Z suffix.
const isoMillis = "2006-01-02T15:04:05.000"

// timestampLayouts covers the formats observed across backend revisions.
// Layouts without a zone are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatISO renders a timestamp in the canonical wire format.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoMillis) + "Z"
}

// ParseTimestamp attempts to parse a raw timestamp string.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sintetizarID produces a large pseudo-random identifier for records that
// arrived without one, so table rendering keys stay unique. Synthesized IDs
// must never be sent back on mutation requests; callers check IDSintetico.
func sintetizarID() int {
	return rand.Intn(1_000_000_000)
}

// firstString returns the value of the first candidate key holding a string,
// including the empty string. Mirrors the panel's ??-style fallback chains,
// where only an absent or non-string value falls through.
func firstString(raw map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s, ok := v.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

// firstNonEmptyString returns the first candidate value that is a non-empty
// string. Mirrors the panel's ||-style chains, which skip empties too.
func firstNonEmptyString(raw map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// firstInt returns the value of the first candidate key holding a number.
func firstInt(raw map[string]any, keys ...string) (int, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if n, ok := asInt(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// asInt converts the numeric representations seen in decoded JSON.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}

// asMap returns v as a JSON object when it is one.
func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// scalarString renders a string or numeric field as text. Used for fields
// like mes/ano that some backend revisions return as numbers.
func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		if s != "" {
			return s, true
		}
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	}
	return "", false
}

// resolveAutor extracts a display name for the record author. A nested
// usuario object wins (nome_completo, then nome_usuario, then nome); flat
// legacy fields are the fallback.
func resolveAutor(raw map[string]any) string {
	if u, ok := asMap(raw["usuario"]); ok {
		if nome, ok := firstNonEmptyString(u, "nome_completo", "nome_usuario", "nome"); ok {
			return nome
		}
	}
	if nome, ok := firstNonEmptyString(raw, "usuario_nome", "profissional", "responsavel", "cuidador", "enfermeiro"); ok {
		return nome
	}
	return ""
}

// Stringify renders any field value for display and search (nil is "").
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
