// Package search implements the free-text matcher used by the catalog
// listing endpoints. It reproduces the search behavior of the admin panel:
// plain substring matching over every field, with special handling for
// boolean-ish queries like "ativo", "inativo", "sim" and "não" so that
// status columns can be filtered by typing their display text.
package search

import (
	"fmt"
	"strings"
)

// NormalizeBool maps a raw field value to a boolean when it represents one.
// Returns (value, true) for recognizable booleans and (false, false) for
// everything else. Numbers other than 0 and 1 are not booleans.
func NormalizeBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case float64:
		// JSON numbers decode as float64
		if b == 1 {
			return true, true
		}
		if b == 0 {
			return false, true
		}
		return false, false
	case int:
		if b == 1 {
			return true, true
		}
		if b == 0 {
			return false, true
		}
		return false, false
	case string:
		s := strings.TrimSpace(strings.ToLower(b))
		switch s {
		case "true", "1", "ativo", "sim":
			return true, true
		case "false", "0", "inativo", "nao", "não":
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

// ItemMatches reports whether a raw record matches the search term.
//
// An empty term matches everything. Terms that normalize to a boolean
// ("sim", "true", "1", or any non-empty prefix of "ativo"; symmetrically
// "nao", "não", "false", "0", or any non-empty prefix of "inativo") match
// when ANY field of the record boolean-normalizes to the desired value.
// Any other term is matched as a case-insensitive substring against the
// string form of every field.
//
// Known quirk, kept on purpose: prefix matching means a single "a" enters
// boolean mode ("a" is a prefix of "ativo") instead of substring search.
// The panel has always behaved this way and operators rely on partial
// typing like "inat" -> inativo.
func ItemMatches(item map[string]any, rawSearch string) bool {
	term := strings.TrimSpace(strings.ToLower(rawSearch))
	if term == "" {
		return true
	}

	if term == "sim" || term == "true" || term == "1" || strings.HasPrefix("ativo", term) {
		return anyFieldBool(item, true)
	}
	if term == "nao" || term == "não" || term == "false" || term == "0" || strings.HasPrefix("inativo", term) {
		return anyFieldBool(item, false)
	}

	for _, v := range item {
		if strings.Contains(strings.ToLower(stringify(v)), term) {
			return true
		}
	}
	return false
}

// anyFieldBool reports whether any field normalizes to the desired boolean.
func anyFieldBool(item map[string]any, desired bool) bool {
	for _, v := range item {
		if b, ok := NormalizeBool(v); ok && b == desired {
			return true
		}
	}
	return false
}

// stringify renders a field value the way the panel did (nil becomes "").
func stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
