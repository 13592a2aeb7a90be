package quiz

type Quiz struct {
	ID            int64  `json:"id"`
	Question      string `json:"question"`
	Answer        string `json:"answer,omitempty"`
	AuthorID      string `json:"author_id,omitempty"`
	AttachmentKey string `json:"attachment_key,omitempty"`
	CreatedAt     int64  `json:"created_at,omitempty"`

	// Favourite is set per caller by the handlers, never stored on the row.
	Favourite bool `json:"favourite,omitempty"`
}

// Public returns a copy safe to hand to players (answer stripped).
func (q Quiz) Public() Quiz {
	q.Answer = ""
	return q
}

type ListOpts struct {
	Q        string // substring match on question
	AuthorID string
	// FavouritesOf keeps only quizzes this user marked as favourite.
	FavouritesOf string
	Limit    int
	Offset   int
}
