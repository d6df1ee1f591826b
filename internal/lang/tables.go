package lang

// Built-in tables for the six supported locales. Keyword sets and phrases are
// plain data; the JSON overlay in LoadFile uses the same shape.
func defaultEntries() map[Language]Entry {
	return map[Language]Entry{
		English: {
			Greeting: "Hello, I'm Lazer. How can I help you with your banking today?",
			Keywords: Keywords{
				Confirm: []string{"yes", "yep", "yeah", "ok", "okay", "sure", "confirm", "confirmed", "go", "proceed", "do it", "send it"},
				Cancel:  []string{"no", "nope", "cancel", "stop", "halt", "wait", "hold on"},
			},
			Phrases: map[string]string{
				PhraseDone:            "Done!",
				PhraseFailed:          "Failed. Try again?",
				PhraseCancelled:       "Cancelled.",
				PhraseNotFound:        "Can't find {name}. Spell it?",
				PhraseWhichOne:        "Which number?",
				PhraseConfirmTransfer: "{amount} to {recipient}. Confirm?",
				PhraseProcessing:      "Processing...",
				PhraseSuccess:         "Transfer successful!",
			},
		},
		French: {
			Greeting: "Bonjour, je suis Lazer. Comment puis-je vous aider avec vos opérations bancaires aujourd'hui?",
			Keywords: Keywords{
				Confirm: []string{"oui", "ouais", "ok", "d'accord", "bien sûr", "confirmer", "confirmé", "allez", "vas-y", "faites-le", "envoie"},
				Cancel:  []string{"non", "annuler", "arrêter", "stop", "halte", "attendre", "attends", "attendez"},
			},
			Phrases: map[string]string{
				PhraseDone:            "Terminé!",
				PhraseFailed:          "Échec. Réessayer?",
				PhraseCancelled:       "Annulé.",
				PhraseNotFound:        "Je ne trouve pas {name}. Épelez-le?",
				PhraseWhichOne:        "Quel numéro?",
				PhraseConfirmTransfer: "{amount} à {recipient}. Confirmez?",
				PhraseProcessing:      "Traitement...",
				PhraseSuccess:         "Transfert réussi!",
			},
			Markers: []string{"bonjour", "merci", "combien", "envoyer", "à qui", "s'il vous plaît"},
		},
		Pidgin: {
			Greeting: "Hello, I be Lazer. How I fit help you with your banking today?",
			Keywords: Keywords{
				Confirm: []string{"yes", "okay", "na so", "correct", "sure", "make we go", "do am", "send am", "e go work", "sharp sharp", "confirm"},
				Cancel:  []string{"no", "e no go work", "cancel", "stop am", "make we stop", "wait", "hold on", "abeg wait", "no do am"},
			},
			Phrases: map[string]string{
				PhraseDone:            "E don do!",
				PhraseFailed:          "E no work. Make we try again?",
				PhraseCancelled:       "E don cancel.",
				PhraseNotFound:        "I no see {name}. Abeg spell am?",
				PhraseWhichOne:        "Which number?",
				PhraseConfirmTransfer: "{amount} for {recipient}. You sure?",
				PhraseProcessing:      "E dey process...",
				PhraseSuccess:         "Money don send successfully!",
			},
			Markers: []string{"abeg", "dey", "wan", "na so", "make we", "e don", "wey", "wetin", "no be"},
		},
		Igbo: {
			Greeting: "Ndewo, abụ m Lazer. Kedu ka m ga-esi nyere gị aka na ụlọ akụ gị taa?",
			Keywords: Keywords{
				Confirm: []string{"ee", "ọ dị mma", "n'ezie", "kwenye", "gaa", "gaba n'ihu", "mee ya", "zie ya"},
				Cancel:  []string{"mba", "kagbuo", "kwụsị", "chere", "jide"},
			},
			Phrases: map[string]string{
				PhraseDone:            "Emechara!",
				PhraseFailed:          "Ọdara. Nwaa ọzọ?",
				PhraseCancelled:       "Kagbuola.",
				PhraseNotFound:        "Ahụghị m {name}. Sụpee ya?",
				PhraseWhichOne:        "Kedu nọmba?",
				PhraseConfirmTransfer: "{amount} nye {recipient}. Kwenye?",
				PhraseProcessing:      "Na-eme...",
				PhraseSuccess:         "Nyefe gara nke ọma!",
			},
			Markers: []string{"onye", "ole", "kwenye", "mba", "kagbuo", "nwaa", "nye"},
		},
		Hausa: {
			Greeting: "Sannu, ni ne Lazer. Ta yaya zan iya taimaka muku da bankin ku yau?",
			Keywords: Keywords{
				Confirm: []string{"i", "eh", "to", "lafiya", "tabbatar", "je", "ci gaba", "yi shi", "aika shi"},
				Cancel:  []string{"a'a", "soke", "tsaya", "dakata", "jira"},
			},
			Phrases: map[string]string{
				PhraseDone:            "An gama!",
				PhraseFailed:          "Ya kasa. Ka sake gwadawa?",
				PhraseCancelled:       "An soke.",
				PhraseNotFound:        "Ban same {name} ba. Rubuta shi?",
				PhraseWhichOne:        "Wane lamba?",
				PhraseConfirmTransfer: "{amount} zuwa {recipient}. Tabbatar?",
				PhraseProcessing:      "Ana aiki...",
				PhraseSuccess:         "An yi nasarar canja kuɗi!",
			},
			Markers: []string{"nawa", "tabbatar", "soke", "zuwa", "kuɗi"},
		},
		Yoruba: {
			Greeting: "Pẹlẹ o, emi ni Lazer. Bawo ni mo ṣe le ran ọ lọwọ pẹlu ifowopamọ rẹ loni?",
			Keywords: Keywords{
				Confirm: []string{"bẹẹni", "o daa", "daju", "jerisi", "lọ", "tẹsiwaju", "ṣe e", "fi ranṣẹ"},
				Cancel:  []string{"bẹẹkọ", "fagile", "duro", "duro de", "duro diẹ"},
			},
			Phrases: map[string]string{
				PhraseDone:            "Ti parí!",
				PhraseFailed:          "Ó kùnà. Gbìyànjú lẹ́ẹ̀kan sí i?",
				PhraseCancelled:       "Ti fagile.",
				PhraseNotFound:        "Mi ò rí {name}. Ṣe ìsípẹ́lì rẹ̀?",
				PhraseWhichOne:        "Nọ́mbà wo?",
				PhraseConfirmTransfer: "{amount} sí {recipient}. Jẹ́rìísí?",
				PhraseProcessing:      "Ń ṣiṣẹ́...",
				PhraseSuccess:         "Gbígbé owó ṣe àṣeyọrí!",
			},
			Markers: []string{"ta ni", "elo", "jerisi", "fagile", "owó", "bẹẹni"},
		},
	}
}
