package lang

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Keywords holds the confirmation and cancellation keyword sets for one
// language. Matching is substring containment against a normalised utterance.
type Keywords struct {
	Confirm []string `json:"confirm"`
	Cancel  []string `json:"cancel"`
}

// Entry is the full table for one language.
type Entry struct {
	Greeting string            `json:"greeting"`
	Keywords Keywords          `json:"keywords"`
	Phrases  map[string]string `json:"phrases"`
	// Markers are words whose presence in free text suggests this language.
	Markers []string `json:"markers"`
}

// Pack maps language tags to their tables. Adding a language is a data
// change: load a JSON file with an entry for the new tag.
type Pack struct {
	entries map[Language]Entry
}

// Phrase keys used by the conversation layer.
const (
	PhraseDone            = "done"
	PhraseFailed          = "failed"
	PhraseCancelled       = "cancelled"
	PhraseNotFound        = "not_found"
	PhraseWhichOne        = "which_one"
	PhraseConfirmTransfer = "confirm_transfer"
	PhraseProcessing      = "processing"
	PhraseSuccess         = "success"
)

// NewPack returns a Pack populated with the built-in tables for the six
// supported locales.
func NewPack() *Pack {
	return &Pack{entries: defaultEntries()}
}

// LoadFile overlays entries from a JSON file onto the pack. Languages present
// in the file replace the built-in entry wholesale; others are untouched.
func (p *Pack) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read language pack: %w", err)
	}
	var overlay map[Language]Entry
	if err := json.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse language pack: %w", err)
	}
	for l, e := range overlay {
		p.entries[l] = e
	}
	return nil
}

// entry returns the table for l, falling back to the default language when
// l has no table.
func (p *Pack) entry(l Language) Entry {
	if e, ok := p.entries[l]; ok {
		return e
	}
	return p.entries[DefaultLanguage]
}

// Greeting returns the session opening line for l.
func (p *Pack) Greeting(l Language) string {
	return p.entry(l).Greeting
}

// ConfirmWords returns the confirmation keyword set for l.
func (p *Pack) ConfirmWords(l Language) []string {
	return p.entry(l).Keywords.Confirm
}

// CancelWords returns the cancellation keyword set for l.
func (p *Pack) CancelWords(l Language) []string {
	return p.entry(l).Keywords.Cancel
}

// Phrase returns a status phrase for l, substituting {placeholder} pairs.
// Unknown keys come back as the key itself so a missing table entry is
// visible rather than silent.
func (p *Pack) Phrase(l Language, key string, args ...string) string {
	phrase, ok := p.entry(l).Phrases[key]
	if !ok {
		phrase = key
	}
	for i := 0; i+1 < len(args); i += 2 {
		phrase = strings.ReplaceAll(phrase, "{"+args[i]+"}", args[i+1])
	}
	return phrase
}

// Detect guesses the language of free text from per-language marker words,
// defaulting to English. Pidgin is checked before the other Nigerian
// languages since it shares vocabulary with English.
func (p *Pack) Detect(text string) Language {
	lower := strings.ToLower(text)
	for _, l := range []Language{French, Pidgin, Igbo, Hausa, Yoruba} {
		for _, marker := range p.entry(l).Markers {
			if strings.Contains(lower, marker) {
				return l
			}
		}
	}
	return DefaultLanguage
}

// Instructions builds the per-language system instructions for the agent.
// The behavioural contract is shared; only the surface text is localised.
func (p *Pack) Instructions(l Language) string {
	e := p.entry(l)
	var b strings.Builder
	fmt.Fprintf(&b, "You are Lazer, a voice banking assistant speaking %s. ", l.Name())
	b.WriteString("Be direct and concise; responses are spoken aloud, so avoid ")
	b.WriteString("unpronounceable punctuation and keep replies to a few words.\n\n")
	b.WriteString("Transfer flow:\n")
	b.WriteString("1. Ask for the recipient name and amount together if either is missing.\n")
	b.WriteString("2. Call get_similar_recipients with the name. If nothing matches, say ")
	fmt.Fprintf(&b, "%q. If several match, read them as a numbered list and ask which number. ", e.Phrases[PhraseNotFound])
	b.WriteString("If exactly one matches, continue.\n")
	fmt.Fprintf(&b, "3. Confirm once with %q. On any affirmative, call make_transfer ", e.Phrases[PhraseConfirmTransfer])
	b.WriteString("immediately with the defaults (category Miscellaneous, reference default, ")
	b.WriteString("from_account_id 1, empty scheduled_at for an immediate transfer). On any ")
	fmt.Fprintf(&b, "negative, say %q and stop.\n", e.Phrases[PhraseCancelled])
	fmt.Fprintf(&b, "4. When make_transfer succeeds, say %q and call signal_transfer_success. ", e.Phrases[PhraseDone])
	fmt.Fprintf(&b, "If it fails, say %q.\n\n", e.Phrases[PhraseFailed])
	b.WriteString("Only include description, category, schedule, or a different source ")
	b.WriteString("account when the user brings them up. Exactly one confirmation step ")
	b.WriteString("before execution; never announce tool calls.")
	return b.String()
}
