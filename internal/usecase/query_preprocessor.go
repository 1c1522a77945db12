package usecase

import (
	"regexp"
	"strings"

	"github.com/savetide/backend/internal/infrastructure/logger"
)

// Compiled regex patterns for query preprocessing
var (
	// Anything that is not a letter, digit or whitespace (Unicode aware, so "café" survives)
	queryPunctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

	// Multiple spaces cleanup
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// maxQueryLength keeps provider queries short enough for the shopping engine
const maxQueryLength = 100

// QueryPreprocessor cleans free-text product queries before they reach the provider
type QueryPreprocessor struct {
	log logger.Logger
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(log logger.Logger) *QueryPreprocessor {
	if log == nil {
		log = logger.NewNop()
	}
	return &QueryPreprocessor{log: log}
}

// Clean strips punctuation, collapses whitespace and caps the query length.
// Returns "" when nothing searchable is left.
func (p *QueryPreprocessor) Clean(query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}

	cleaned := queryPunctuationPattern.ReplaceAllString(query, " ")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if len(cleaned) > maxQueryLength {
		cleaned = truncateAtWord(cleaned, maxQueryLength)
	}

	if cleaned != query {
		p.log.Debug("query cleaned",
			logger.String("input", query),
			logger.String("output", cleaned))
	}

	return cleaned
}

// CacheKey builds the cache key for a cleaned query.
// Format: "compare:{lowercased query}"
func (p *QueryPreprocessor) CacheKey(cleaned string) string {
	return "compare:" + lowerText(cleaned)
}

// truncateAtWord cuts s to at most limit bytes, preferring a word boundary
// in the second half and never splitting a UTF-8 sequence
func truncateAtWord(s string, limit int) string {
	cut := limit
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	s = s[:cut]
	if lastSpace := strings.LastIndex(s, " "); lastSpace > limit/2 {
		s = s[:lastSpace]
	}
	return strings.TrimSpace(s)
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
