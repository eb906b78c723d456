package discovery

import (
	"fmt"
	"strings"

	"book-discovery-be/pkg/survey"
)

// descriptionPrompt is built only from the catalog keys so the same
// response always yields the same prompt
func descriptionPrompt(response survey.Response) string {
	var prompt strings.Builder

	prompt.WriteString("Based on the following survey responses from a child reader, suggest an ideal book description:\n\n")

	prompt.WriteString("Reader Profile:\n")
	writeField(&prompt, "Gender", response.Strings(survey.KeyReaderGender), ", ")
	writeField(&prompt, "Age", response.Strings(survey.KeyReaderAge), ", ")
	writeField(&prompt, "Favorite Genres", response.Strings(survey.KeyFavoriteGenre), ", ")
	prompt.WriteString("\n")

	prompt.WriteString("Character Preferences:\n")
	writeLines(&prompt, response.Strings(survey.KeyCharacterTrait))

	prompt.WriteString("Plot Elements:\n")
	writeLines(&prompt, response.Strings(survey.KeyStoryPlot))

	prompt.WriteString("Setting:\n")
	writeLines(&prompt, response.Strings(survey.KeyStoryLocation))

	prompt.WriteString("Describe in detail the book this reader would love: its characters, plot and setting.\n")
	prompt.WriteString("Keep the description focused on the textual description of the book and its plot.")

	return prompt.String()
}

func writeField(prompt *strings.Builder, label string, values []string, sep string) {
	fmt.Fprintf(prompt, "- %s: %s\n", label, strings.Join(values, sep))
}

func writeLines(prompt *strings.Builder, values []string) {
	for _, v := range values {
		prompt.WriteString(v)
		prompt.WriteString("\n")
	}
	prompt.WriteString("\n")
}

// rationalePrompt asks for a numbered "<n>. <title>: <rationale>" list
func rationalePrompt(unread []BookCandidate, limit int) string {
	var prompt strings.Builder

	prompt.WriteString("Þú ert bókmenntafræðingur sem sérhæfir þig í að mæla með bókum.\n\n")

	prompt.WriteString("Hér er listi af bókum sem notandi hefur ekki lesið:\n")
	for _, book := range unread {
		fmt.Fprintf(&prompt, "- %s: %s\n", book.Title, book.Description)
	}
	prompt.WriteString("\n")

	fmt.Fprintf(&prompt, "Veldu %d bestu bækurnar úr listanum og útskýrðu í STUTTU máli (hámark 2 setningar) af hverju hver bók er góður kostur.\n", limit)
	prompt.WriteString("Svarið þarf að vera á forminu:\n")
	prompt.WriteString("1. [Titill bókar]: [Útskýring]\n")
	prompt.WriteString("2. [Titill bókar]: [Útskýring]\n")
	prompt.WriteString("osf.")

	return prompt.String()
}
