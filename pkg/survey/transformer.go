package survey

// Response maps Question.Key to the answer value (string or []string).
// It is always derived from an AnswerStore, never edited directly.
type Response map[string]any

// ToResponse builds the semantic response for the given question list.
// Unanswered questions are omitted rather than set to an empty value.
func ToResponse(questions []Question, answers *AnswerStore) Response {
	response := make(Response, answers.Len())
	for _, q := range questions {
		a, ok := answers.Get(q.Id)
		if !ok {
			continue
		}
		response[q.Key] = a.Value()
	}
	return response
}

// Strings returns the value under key as a list, whatever its stored shape
func (r Response) Strings(key string) []string {
	switch v := r[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
