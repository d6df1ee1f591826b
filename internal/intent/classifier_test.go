package intent

import (
	"testing"

	"voicebank-server/internal/lang"
)

func newClassifier(p Policy) *Classifier {
	return New(lang.NewPack(), p)
}

func TestClassify_ConfirmAllLanguages(t *testing.T) {
	c := newClassifier(CancelWins)
	cases := []struct {
		language  lang.Language
		utterance string
	}{
		{lang.English, "yes please"},
		{lang.English, "please do it now"},
		{lang.French, "oui bien sûr"},
		{lang.Pidgin, "do am sharp sharp"},
		{lang.Igbo, "kwenye"},
		{lang.Hausa, "tabbatar"},
		{lang.Yoruba, "jerisi"},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.utterance, tc.language); got != Confirm {
			t.Errorf("Classify(%q, %s) = %s, want confirm", tc.utterance, tc.language, got)
		}
	}
}

func TestClassify_CancelAllLanguages(t *testing.T) {
	c := newClassifier(CancelWins)
	cases := []struct {
		language  lang.Language
		utterance string
	}{
		{lang.English, "no, cancel that"},
		{lang.French, "non, annuler"},
		{lang.Pidgin, "abeg wait first"},
		{lang.Igbo, "kagbuo ya"},
		{lang.Hausa, "soke shi"},
		{lang.Yoruba, "fagile"},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.utterance, tc.language); got != Cancel {
			t.Errorf("Classify(%q, %s) = %s, want cancel", tc.utterance, tc.language, got)
		}
	}
}

func TestClassify_UnclearWhenNoKeywordMatches(t *testing.T) {
	c := newClassifier(CancelWins)
	for _, utterance := range []string{"hmm let me think", "what was the amount again", ""} {
		if got := c.Classify(utterance, lang.English); got != Unclear {
			t.Errorf("Classify(%q) = %s, want unclear", utterance, got)
		}
	}
}

func TestClassify_PhraseContainment(t *testing.T) {
	c := newClassifier(CancelWins)
	// A keyword phrase anywhere in the utterance triggers a match.
	if got := c.Classify("alright then, send it over", lang.English); got != Confirm {
		t.Errorf("expected phrase match to confirm, got %s", got)
	}
}

func TestClassify_KeywordsMatchOnWordBoundaries(t *testing.T) {
	c := newClassifier(CancelWins)

	// "no" inside "now" or "know" must not read as a cancellation.
	cases := []struct {
		language  lang.Language
		utterance string
		want      Intent
	}{
		{lang.English, "please do it now", Confirm},
		{lang.English, "i know the amount", Unclear},
		{lang.English, "nothing else, do it", Confirm},
		{lang.English, "no, do not send it", Cancel},
		{lang.Hausa, "ina tura kudi", Unclear},
		{lang.Hausa, "i, yi shi", Confirm},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.utterance, tc.language); got != tc.want {
			t.Errorf("Classify(%q, %s) = %s, want %s", tc.utterance, tc.language, got, tc.want)
		}
	}
}

func TestClassify_BothSetsMatch_PolicyDecides(t *testing.T) {
	// "yes" is a confirmation keyword and "wait" a cancellation keyword.
	utterance := "yes but wait a second"

	if got := newClassifier(CancelWins).Classify(utterance, lang.English); got != Cancel {
		t.Errorf("CancelWins policy: got %s, want cancel", got)
	}
	if got := newClassifier(ConfirmWins).Classify(utterance, lang.English); got != Confirm {
		t.Errorf("ConfirmWins policy: got %s, want confirm", got)
	}
}

func TestClassify_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	c := newClassifier(CancelWins)
	if got := c.Classify("yes, go ahead", lang.Language("sw")); got != Confirm {
		t.Errorf("expected English fallback to confirm, got %s", got)
	}
}

func TestClassify_CaseAndWhitespaceNormalisation(t *testing.T) {
	c := newClassifier(CancelWins)
	if got := c.Classify("  YES  ", lang.English); got != Confirm {
		t.Errorf("expected normalised confirm, got %s", got)
	}
}
