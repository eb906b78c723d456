package dto

import "book-discovery-be/pkg/discovery"

type DescriptionResponse struct {
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// SearchRequest falls back to the session's generated description when Description is nil
type SearchRequest struct {
	Description *string `json:"description" validate:"omitempty,max=4000"`
	TopK        int     `json:"top_k" validate:"min=0"`
}

type SearchResponse struct {
	Description string                    `json:"description"`
	TopK        int                       `json:"top_k"`
	Candidates  []discovery.BookCandidate `json:"candidates"`
}

type ToggleReadResponse struct {
	BookId  string   `json:"book_id"`
	Read    bool     `json:"read"`
	ReadSet []string `json:"read_set"`
}

type RecommendationsResponse struct {
	Recommendations []discovery.Recommendation `json:"recommendations"`
	Placeholders    int                        `json:"placeholders"`
}

type IndexBookItem struct {
	Id          string `json:"id" validate:"required,max=255"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	ImageUrl    string `json:"image_url" validate:"omitempty,max=2048"`
	Url         string `json:"url" validate:"omitempty,max=2048"`
}

type IndexBooksRequest struct {
	Books []IndexBookItem `json:"books" validate:"required,min=1,max=500,dive"`
}

type IndexBooksResponse struct {
	Queued int `json:"queued"`
}

// IndexBooksMessage is the payload of the book indexing topic
type IndexBooksMessage struct {
	Books []IndexBookItem `json:"books"`
}
