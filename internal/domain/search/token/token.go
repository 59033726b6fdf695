// Package token provides text tokenization for keyword indexing.
package token

import "strings"

// DefaultMinLength is the minimum keyword length kept by default.
const DefaultMinLength = 2

// cookingStopwords are common English words plus recipe-instruction filler
// that carry no ranking signal.
var cookingStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from", "has", "he",
	"in", "is", "it", "its", "of", "on", "that", "the", "to", "was", "will", "with",
	"add", "then", "into", "over", "until", "about", "all", "also", "can", "or",
}

// DefaultStopwords returns a copy of the cooking-domain stopword set.
func DefaultStopwords() []string {
	out := make([]string, len(cookingStopwords))
	copy(out, cookingStopwords)
	return out
}

// Tokenize lower-cases text, replaces every rune that is not an ASCII letter
// or digit with a space, and splits on whitespace. Pure and locale-independent.
func Tokenize(text string) []string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte(' ')
		}
	}
	return strings.Fields(sb.String())
}

// Tokenizer filters raw tokens down to indexable keywords.
type Tokenizer struct {
	minLength int
	stopwords map[string]struct{}
}

// New creates a Tokenizer. A non-positive minLength falls back to
// DefaultMinLength; an empty stopword list disables stopword removal.
func New(minLength int, stopwords []string) Tokenizer {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		set[strings.ToLower(w)] = struct{}{}
	}
	return Tokenizer{minLength: minLength, stopwords: set}
}

// Keywords tokenizes text and applies length and stopword filtering.
func (t Tokenizer) Keywords(text string) []string {
	return t.Filter(Tokenize(text))
}

// Filter drops tokens shorter than the minimum length and tokens in the
// stopword set.
func (t Tokenizer) Filter(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) < t.minLength {
			continue
		}
		if _, stop := t.stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}
