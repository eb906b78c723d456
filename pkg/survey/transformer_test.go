package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToResponse(t *testing.T) {
	questions := testCatalog()
	questions[0].Id = 1
	questions[1].Id = 2

	tests := []struct {
		name    string
		answers []*Answer
		want    Response
	}{
		{
			name: "no answers yields empty response",
			want: Response{},
		},
		{
			name: "unanswered keys are omitted",
			answers: []*Answer{
				{QuestionId: 1, Kind: KindSingleChoice, Text: "8-9"},
			},
			want: Response{"reader-age": "8-9"},
		},
		{
			name: "multiple choice keeps the custom entry in the set",
			answers: []*Answer{
				{QuestionId: 2, Kind: KindMultipleChoice, Selected: []string{"Mystery"}, Custom: "Dragons"},
				{QuestionId: 1, Kind: KindSingleChoice, Text: "6-7"},
			},
			want: Response{
				"reader-age": "6-7",
				"story-plot": []string{"Mystery", "Dragons"},
			},
		},
		{
			name: "answers for unknown questions are ignored",
			answers: []*Answer{
				{QuestionId: 9, Kind: KindSingleChoice, Text: "stray"},
			},
			want: Response{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewAnswerStore()
			for _, a := range tt.answers {
				store.Put(a)
			}

			got := ToResponse(questions, store)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, ToResponse(questions, store), "transform is idempotent")
		})
	}
}

func TestResponse_Strings(t *testing.T) {
	r := Response{
		"single": "a",
		"empty":  "",
		"set":    []string{"a", "b"},
		"loose":  []any{"x", 3, "y"},
	}

	assert.Equal(t, []string{"a"}, r.Strings("single"))
	assert.Nil(t, r.Strings("empty"))
	assert.Equal(t, []string{"a", "b"}, r.Strings("set"))
	assert.Equal(t, []string{"x", "y"}, r.Strings("loose"))
	assert.Nil(t, r.Strings("missing"))
}

func TestAnswerStore_KeepsInsertionOrder(t *testing.T) {
	store := NewAnswerStore()
	store.Put(&Answer{QuestionId: 3, Text: "c"})
	store.Put(&Answer{QuestionId: 1, Text: "a"})
	store.Put(&Answer{QuestionId: 3, Text: "c2"})
	store.Delete(1)
	store.Put(&Answer{QuestionId: 2, Text: "b"})

	var ids []int
	for _, a := range store.Entries() {
		ids = append(ids, a.QuestionId)
	}
	assert.Equal(t, []int{3, 2}, ids)
	got, _ := store.Get(3)
	assert.Equal(t, "c2", got.Text)
}
