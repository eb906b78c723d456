package expander

import "book-discovery-be/pkg/survey"

// FallbackQuestions is the fixed set used whenever generation fails
func FallbackQuestions() []survey.Question {
	return []survey.Question{
		{
			Key:  "fallback1",
			Text: "Hvaða tegund af sögu myndir þú vilja lesa?",
			Kind: survey.KindSingleChoice,
			Options: []string{
				"Ævintýri",
				"Spennusaga",
				"Rómantík",
				"Vísindaskáldskapur",
				"Fantasía",
			},
		},
		{
			Key:  "fallback2",
			Text: "Hversu löng ætti sagan að vera?",
			Kind: survey.KindSingleChoice,
			Options: []string{
				"Stutt saga (undir 10 mínútur)",
				"Miðlungs (10-20 mínútur)",
				"Löng saga (yfir 20 mínútur)",
			},
		},
	}
}
