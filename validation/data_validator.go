// Package validation provides input validation for the panel gateway.
// Everything here runs before any upstream call: malformed input is rejected
// at the edge with a Portuguese message the UI can show as-is.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Observações bounds, in runes over the trimmed text. Accented characters
// count as one.
const (
	ObservacoesMin = 10
	ObservacoesMax = 1000
)

// MaxLimit caps the page size a caller may request.
const MaxLimit = 200

// Pre-compiled regex patterns for performance optimization
// Compiled once at package initialization and reused for all validations
var (
	// Search-term validation: alphanumeric + Portuguese accents + safe punctuation
	buscaRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'ãõáéíóúâêôûàçüÃÕÁÉÍÓÚÂÊÔÛÀÇÜ]+$`)

	// Dangerous patterns as strings (faster than regex for simple substring matching)
	// strings.Contains is 5-10x faster than regex for these patterns
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "url(", "import ", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "sp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:",
	}
)

// ValidateObservacoes checks the free-text body of an evolution note or
// report. Bounds are counted in runes over the trimmed text.
func ValidateObservacoes(observacoes string) error {
	aparada := strings.TrimSpace(observacoes)
	tamanho := utf8.RuneCountInString(aparada)

	if tamanho < ObservacoesMin {
		return fmt.Errorf("observações devem ter pelo menos %d caracteres", ObservacoesMin)
	}
	if tamanho > ObservacoesMax {
		return fmt.Errorf("observações devem ter no máximo %d caracteres", ObservacoesMax)
	}
	return nil
}

// ValidatePage parses a page query parameter. Empty means page 1.
func ValidatePage(input string) (int, error) {
	if input == "" {
		return 1, nil
	}

	page, err := strconv.Atoi(input)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("página inválida: deve ser um inteiro positivo")
	}
	return page, nil
}

// ValidateLimit parses a limit query parameter against the default and cap.
func ValidateLimit(input string, padrao int) (int, error) {
	if input == "" {
		return padrao, nil
	}

	limit, err := strconv.Atoi(input)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("limite inválido: deve ser um inteiro positivo")
	}
	if limit > MaxLimit {
		return 0, fmt.Errorf("limite inválido: máximo %d", MaxLimit)
	}
	return limit, nil
}

// ValidateID parses a positive integer route parameter.
func ValidateID(input string) (int, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return -1, fmt.Errorf("identificador não pode ser vazio")
	}

	// Reject if original input contained whitespace (spaces, tabs, etc.)
	if len(input) != len(trimmedInput) {
		return -1, fmt.Errorf("identificador inválido: apenas dígitos são aceitos")
	}

	// strconv.Atoi() validates that input contains only digits
	// Returns error for any non-numeric characters (no regex overhead)
	id, err := strconv.Atoi(trimmedInput)
	if err != nil || id < 1 {
		return -1, fmt.Errorf("identificador inválido: apenas dígitos são aceitos")
	}
	return id, nil
}

// ValidateData checks a yyyy-mm-dd date query parameter. Empty is allowed;
// the filter is simply absent.
func ValidateData(input string) error {
	if input == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", input); err != nil {
		return fmt.Errorf("data inválida: use o formato aaaa-mm-dd")
	}
	return nil
}

// ValidateBusca validates a search term with enhanced security. Empty terms
// are valid and mean no filtering.
func ValidateBusca(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	if utf8.RuneCountInString(input) > 50 {
		return fmt.Errorf("busca muito longa: máximo 50 caracteres")
	}

	// Word count validation to prevent DoS attacks with many short words
	words := strings.Fields(input)
	if len(words) > 6 {
		return fmt.Errorf("busca muito complexa: máximo 6 palavras")
	}

	// Check for potentially dangerous patterns using string matching (5-10x faster than regex)
	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("busca contém conteúdo potencialmente perigoso")
		}
	}

	// Allow only letters, numbers, spaces, safe punctuation and Portuguese
	// accented characters
	if !buscaRegex.MatchString(input) {
		return fmt.Errorf("busca contém caracteres inválidos")
	}

	// Additional checks for repeated characters (potential DoS)
	if hasExcessiveRepetition(input) {
		return fmt.Errorf("busca contém repetição excessiva de caracteres")
	}

	return nil
}

// hasExcessiveRepetition checks for potential DoS patterns with excessive character repetition
func hasExcessiveRepetition(input string) bool {
	// Check for the same character repeated more than 10 times consecutively
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
