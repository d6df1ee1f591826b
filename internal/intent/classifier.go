// Package intent classifies free-form utterances into confirm, cancel, or
// unclear for the transfer confirmation step.
package intent

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"voicebank-server/internal/lang"
)

// Intent is the classification of a user utterance.
type Intent int

const (
	Unclear Intent = iota
	Confirm
	Cancel
)

func (i Intent) String() string {
	switch i {
	case Confirm:
		return "confirm"
	case Cancel:
		return "cancel"
	default:
		return "unclear"
	}
}

// Policy decides which intent wins when an utterance matches both the
// confirmation and cancellation keyword sets. The sets are not guaranteed
// disjoint across languages, so the precedence must be an explicit choice.
type Policy int

const (
	// CancelWins treats an utterance matching both sets as a cancellation.
	// This is the default: money movement resolves ambiguity to the safe side.
	CancelWins Policy = iota
	// ConfirmWins treats an utterance matching both sets as a confirmation.
	ConfirmWins
)

// Classifier classifies utterances against a language pack's keyword sets.
type Classifier struct {
	pack   *lang.Pack
	policy Policy
}

// New creates a Classifier with the given precedence policy.
func New(pack *lang.Pack, policy Policy) *Classifier {
	return &Classifier{pack: pack, policy: policy}
}

// Classify normalises the utterance and tests it for containment of any
// keyword in the language's sets. Keywords match only on word boundaries:
// "please do it now" matches the keyword "do it" but not "no", and Hausa
// "i" never fires inside an unrelated word. Languages without a keyword
// table use the default language's table.
func (c *Classifier) Classify(utterance string, language lang.Language) Intent {
	normalised := strings.ToLower(strings.TrimSpace(utterance))
	if normalised == "" {
		return Unclear
	}

	confirmed := containsAny(normalised, c.pack.ConfirmWords(language))
	cancelled := containsAny(normalised, c.pack.CancelWords(language))

	switch {
	case confirmed && cancelled:
		if c.policy == ConfirmWins {
			return Confirm
		}
		return Cancel
	case confirmed:
		return Confirm
	case cancelled:
		return Cancel
	default:
		return Unclear
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && containsWord(s, kw) {
			return true
		}
	}
	return false
}

// containsWord reports whether kw occurs in s with no letter or digit
// directly adjacent. Multi-word keywords match as phrases, so "do it"
// still matches inside "please do it now".
func containsWord(s, kw string) bool {
	for offset := 0; ; {
		i := strings.Index(s[offset:], kw)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(kw)

		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		offset = start + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
