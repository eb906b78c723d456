package discovery

import "strings"

const NoRationale = "no explanation available"

// RationaleMatcher finds the rationale for a title inside free-form model text
type RationaleMatcher interface {
	Match(text, title string) (string, bool)
}

// TitleSubstringMatcher takes the first line containing the title and returns
// what follows the first ": " on it. When one unread title is a substring of
// another, attribution between the two is undefined.
type TitleSubstringMatcher struct{}

func (TitleSubstringMatcher) Match(text, title string) (string, bool) {
	if strings.TrimSpace(title) == "" {
		return "", false
	}
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, title) {
			continue
		}
		_, rationale, found := strings.Cut(line, ": ")
		rationale = strings.TrimSpace(rationale)
		if !found || rationale == "" {
			return "", false
		}
		return rationale, true
	}
	return "", false
}
