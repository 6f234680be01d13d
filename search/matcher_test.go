package search

import "testing"

// TestItemMatchesBooleanMode tests the ativo/inativo style queries
func TestItemMatchesBooleanMode(t *testing.T) {
	tests := []struct {
		name     string
		item     map[string]any
		search   string
		expected bool
	}{
		{
			name:     "ativo matches record with true field",
			item:     map[string]any{"a": true, "b": "foo"},
			search:   "ativo",
			expected: true,
		},
		{
			name:     "ativo does not match record with only false field",
			item:     map[string]any{"a": false},
			search:   "ativo",
			expected: false,
		},
		{
			name:     "inativo matches record with false field",
			item:     map[string]any{"situacao": false, "nome": "Maria"},
			search:   "inativo",
			expected: true,
		},
		{
			name:     "sim matches numeric 1",
			item:     map[string]any{"situacao": float64(1)},
			search:   "sim",
			expected: true,
		},
		{
			name:     "nao matches numeric 0",
			item:     map[string]any{"situacao": float64(0)},
			search:   "nao",
			expected: true,
		},
		{
			name:     "não with accent matches string inativo",
			item:     map[string]any{"situacao": "inativo"},
			search:   "não",
			expected: true,
		},
		{
			name:     "numbers other than 0 and 1 are not booleans",
			item:     map[string]any{"grau": float64(3)},
			search:   "ativo",
			expected: false,
		},
		{
			name:     "string ativo field matches ativo query",
			item:     map[string]any{"situacao": "Ativo"},
			search:   "ativo",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ItemMatches(tt.item, tt.search); got != tt.expected {
				t.Errorf("ItemMatches(%v, %q) = %v, want %v", tt.item, tt.search, got, tt.expected)
			}
		})
	}
}

// TestItemMatchesPrefixQuirk documents the partial-typing behavior: any
// non-empty prefix of "ativo"/"inativo" triggers boolean mode
func TestItemMatchesPrefixQuirk(t *testing.T) {
	item := map[string]any{"situacao": true}

	if !ItemMatches(item, "ativ") {
		t.Error("prefix 'ativ' should enter boolean mode and match a true field")
	}
	if !ItemMatches(item, "a") {
		t.Error("single 'a' is a prefix of 'ativo' and should match a true field")
	}
	if ItemMatches(map[string]any{"nome": "Amanda"}, "a") {
		t.Error("single 'a' stays in boolean mode, so it must not substring-match 'Amanda'")
	}
	if !ItemMatches(map[string]any{"situacao": false}, "inat") {
		t.Error("prefix 'inat' should enter boolean mode and match a false field")
	}
}

// TestItemMatchesSubstring tests the generic text path
func TestItemMatchesSubstring(t *testing.T) {
	tests := []struct {
		name     string
		item     map[string]any
		search   string
		expected bool
	}{
		{
			name:     "empty search matches everything",
			item:     map[string]any{"nome": "João"},
			search:   "",
			expected: true,
		},
		{
			name:     "whitespace only search matches everything",
			item:     map[string]any{"nome": "João"},
			search:   "   ",
			expected: true,
		},
		{
			name:     "case-insensitive substring on any field",
			item:     map[string]any{"nome": "Dipirona 500mg", "posologia": "8/8h"},
			search:   "dipirona",
			expected: true,
		},
		{
			name:     "no field contains term",
			item:     map[string]any{"a": true, "b": "foo"},
			search:   "xyz",
			expected: false,
		},
		{
			name:     "nil field renders as empty string",
			item:     map[string]any{"nome": nil},
			search:   "nil",
			expected: false,
		},
		{
			name:     "numeric field matched as text",
			item:     map[string]any{"grau": float64(42)},
			search:   "42",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ItemMatches(tt.item, tt.search); got != tt.expected {
				t.Errorf("ItemMatches(%v, %q) = %v, want %v", tt.item, tt.search, got, tt.expected)
			}
		})
	}
}

// TestNormalizeBool tests the field boolean normalization table
func TestNormalizeBool(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   bool
		wantOk bool
	}{
		{"bool true", true, true, true},
		{"bool false", false, false, true},
		{"float 1", float64(1), true, true},
		{"float 0", float64(0), false, true},
		{"float 2 not boolean", float64(2), false, false},
		{"int 1", 1, true, true},
		{"string true", "true", true, true},
		{"string SIM uppercase", "SIM", true, true},
		{"string nao", "nao", false, true},
		{"string não accented", "não", false, true},
		{"string inativo", "inativo", false, true},
		{"string ativo padded", "  ativo  ", true, true},
		{"arbitrary string", "foo", false, false},
		{"nil", nil, false, false},
		{"slice", []any{1}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeBool(tt.value)
			if ok != tt.wantOk || (ok && got != tt.want) {
				t.Errorf("NormalizeBool(%v) = (%v, %v), want (%v, %v)", tt.value, got, ok, tt.want, tt.wantOk)
			}
		})
	}
}
