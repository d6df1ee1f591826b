package lang

// Language is a supported locale tag. It is selected once per session and
// never changes mid-session.
type Language string

const (
	English Language = "en"
	French  Language = "fr"
	Pidgin  Language = "pcm" // Nigerian Pidgin, ISO 639-3
	Igbo    Language = "ig"
	Hausa   Language = "ha"
	Yoruba  Language = "yo"
)

// DefaultLanguage is the fallback for missing or unrecognised codes.
const DefaultLanguage = English

var names = map[Language]string{
	English: "English",
	French:  "Français",
	Pidgin:  "Naija Pidgin",
	Igbo:    "Igbo",
	Hausa:   "Hausa",
	Yoruba:  "Yorùbá",
}

// Name returns the language name in its native script.
func (l Language) Name() string {
	if n, ok := names[l]; ok {
		return n
	}
	return string(l)
}

// Supported reports whether l is one of the known locales.
func (l Language) Supported() bool {
	_, ok := names[l]
	return ok
}

// Parse maps a locale code to a Language, falling back to DefaultLanguage
// for anything it does not recognise.
func Parse(code string) Language {
	l := Language(code)
	if l.Supported() {
		return l
	}
	return DefaultLanguage
}

// All returns every supported language.
func All() []Language {
	return []Language{English, French, Pidgin, Igbo, Hausa, Yoruba}
}
