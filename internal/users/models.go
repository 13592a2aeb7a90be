package users

import "errors"

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username taken")
)

type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	PasswordHash  string `json:"-"`
	Role          string `json:"role"` // student|teacher|admin
	ScoreNormal   int    `json:"score_normal"`
	ScoreMultiple int    `json:"score_multiple"`
	Score         int    `json:"score"`
	CreatedAt     int64  `json:"created_at,omitempty"`
}

// Field names a persisted score column.
type Field string

const (
	FieldScoreNormal   Field = "score_normal"
	FieldScoreMultiple Field = "score_multiple"
	FieldScore         Field = "score"
)

// RankingEntry is one row of the public leaderboard.
type RankingEntry struct {
	Rank          int    `json:"rank"`
	Username      string `json:"username"`
	ScoreNormal   int    `json:"score_normal"`
	ScoreMultiple int    `json:"score_multiple"`
	Score         int    `json:"score"`
}
