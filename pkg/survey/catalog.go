package survey

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Semantic keys of the built-in catalog, read by the description prompt
const (
	KeyReaderGender   = "reader-gender"
	KeyReaderAge      = "reader-age"
	KeyFavoriteGenre  = "reader-favorite-genre"
	KeyCharacterTrait = "main-character-traits"
	KeyStoryPlot      = "story-plot"
	KeyStoryLocation  = "story-location"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Questions []catalogEntry `yaml:"questions"`
}

type catalogEntry struct {
	Key            string   `yaml:"key"`
	Text           string   `yaml:"text"`
	Type           string   `yaml:"type"`
	Options        []string `yaml:"options"`
	AllowTextInput bool     `yaml:"allow_text_input"`
}

// DefaultCatalog returns the built-in static questions
func DefaultCatalog() ([]Question, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes a YAML question catalog. Ids follow list position.
func ParseCatalog(data []byte) ([]Question, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if len(file.Questions) == 0 {
		return nil, ErrEmptyCatalog
	}

	questions := make([]Question, 0, len(file.Questions))
	seen := make(map[string]struct{}, len(file.Questions))
	for i, entry := range file.Questions {
		kind, ok := ParseKind(entry.Type)
		if !ok {
			return nil, fmt.Errorf("catalog entry %d (%s): unknown type %q", i, entry.Key, entry.Type)
		}
		if _, dup := seen[entry.Key]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate key %q", i, entry.Key)
		}
		seen[entry.Key] = struct{}{}

		q := Question{
			Id:              i + 1,
			Key:             entry.Key,
			Text:            entry.Text,
			Kind:            kind,
			Options:         entry.Options,
			AllowCustomText: entry.AllowTextInput,
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}
