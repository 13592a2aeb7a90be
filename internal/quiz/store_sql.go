package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SQLStore serves quizzes from the quizzes table. ORDER BY RANDOM() and $n
// placeholders are understood by both modernc sqlite and postgres.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const quizCols = `id,question,answer,author_id,attachment_key,created_at`

// placeholders renders "$start,...,$start+n-1".
func placeholders(start, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(start + i))
	}
	return b.String()
}

func scanQuiz(row interface{ Scan(...any) error }) (Quiz, error) {
	var q Quiz
	err := row.Scan(&q.ID, &q.Question, &q.Answer, &q.AuthorID, &q.AttachmentKey, &q.CreatedAt)
	return q, err
}

func (s *SQLStore) RandomQuiz(ctx context.Context, excludeIDs []int64) (Quiz, bool, error) {
	query := `SELECT ` + quizCols + ` FROM quizzes`
	args := make([]any, 0, len(excludeIDs))
	if len(excludeIDs) > 0 {
		query += ` WHERE id NOT IN (` + placeholders(1, len(excludeIDs)) + `)`
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY RANDOM() LIMIT 1`

	q, err := scanQuiz(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, false, nil
	}
	if err != nil {
		return Quiz{}, false, fmt.Errorf("quiz: random: %w", err)
	}
	return q, true, nil
}

func (s *SQLStore) RandomAnswers(ctx context.Context, exclude []string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	inner := `SELECT DISTINCT answer FROM quizzes`
	args := make([]any, 0, len(exclude)+1)
	if len(exclude) > 0 {
		inner += ` WHERE answer NOT IN (` + placeholders(1, len(exclude)) + `)`
		for _, a := range exclude {
			args = append(args, a)
		}
	}
	args = append(args, n)
	query := `SELECT answer FROM (` + inner + `) AS a ORDER BY RANDOM() LIMIT $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("quiz: random answers: %w", err)
	}
	defer rows.Close()
	out := make([]string, 0, n)
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("quiz: random answers: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetQuiz(ctx context.Context, id int64) (Quiz, error) {
	q, err := scanQuiz(s.db.QueryRowContext(ctx, `SELECT `+quizCols+` FROM quizzes WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, ErrNotFound
	}
	if err != nil {
		return Quiz{}, fmt.Errorf("quiz: get: %w", err)
	}
	return q, nil
}

func (s *SQLStore) CreateQuiz(ctx context.Context, q Quiz) (Quiz, error) {
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO quizzes (question,answer,author_id,attachment_key,created_at)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		q.Question, q.Answer, q.AuthorID, q.AttachmentKey, q.CreatedAt)
	if err := row.Scan(&q.ID); err != nil {
		return Quiz{}, fmt.Errorf("quiz: create: %w", err)
	}
	return q, nil
}

func (s *SQLStore) UpdateQuiz(ctx context.Context, q Quiz) (Quiz, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE quizzes SET question=$1, answer=$2 WHERE id=$3`,
		q.Question, q.Answer, q.ID)
	if err != nil {
		return Quiz{}, fmt.Errorf("quiz: update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Quiz{}, ErrNotFound
	}
	return s.GetQuiz(ctx, q.ID)
}

// DeleteQuiz removes the quiz together with every favourite mark on it.
func (s *SQLStore) DeleteQuiz(ctx context.Context, id int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("quiz: delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM favourites WHERE quiz_id=$1`, id); err != nil {
		return fmt.Errorf("quiz: delete: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("quiz: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("quiz: delete: %w", err)
	}
	return nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context, opts ListOpts) ([]Quiz, error) {
	where := []string{}
	args := []any{}
	if q := strings.TrimSpace(opts.Q); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		where = append(where, `LOWER(question) LIKE $`+strconv.Itoa(len(args)))
	}
	if opts.AuthorID != "" {
		args = append(args, opts.AuthorID)
		where = append(where, `author_id=$`+strconv.Itoa(len(args)))
	}
	if opts.FavouritesOf != "" {
		args = append(args, opts.FavouritesOf)
		where = append(where, `id IN (SELECT quiz_id FROM favourites WHERE user_id=$`+strconv.Itoa(len(args))+`)`)
	}
	query := `SELECT ` + quizCols + ` FROM quizzes`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, opts.Offset)
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("quiz: list: %w", err)
	}
	defer rows.Close()
	out := []Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("quiz: list: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountByAuthorSince(ctx context.Context, authorID string, since int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quizzes WHERE author_id=$1 AND created_at >= $2`, authorID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("quiz: count: %w", err)
	}
	return n, nil
}

func (s *SQLStore) SetAttachment(ctx context.Context, id int64, key string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE quizzes SET attachment_key=$1 WHERE id=$2`, key, id)
	if err != nil {
		return fmt.Errorf("quiz: attachment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) SetFavourite(ctx context.Context, userID string, quizID int64, on bool) error {
	if _, err := s.GetQuiz(ctx, quizID); err != nil {
		return err
	}
	var err error
	if on {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO favourites (user_id,quiz_id,created_at) VALUES ($1,$2,$3) ON CONFLICT DO NOTHING`,
			userID, quizID, time.Now().Unix())
	} else {
		_, err = s.db.ExecContext(ctx, `DELETE FROM favourites WHERE user_id=$1 AND quiz_id=$2`, userID, quizID)
	}
	if err != nil {
		return fmt.Errorf("quiz: favourite: %w", err)
	}
	return nil
}

func (s *SQLStore) Favourites(ctx context.Context, userID string, quizIDs []int64) (map[int64]bool, error) {
	out := map[int64]bool{}
	if userID == "" || len(quizIDs) == 0 {
		return out, nil
	}
	args := make([]any, 0, len(quizIDs)+1)
	args = append(args, userID)
	for _, id := range quizIDs {
		args = append(args, id)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT quiz_id FROM favourites WHERE user_id=$1 AND quiz_id IN (`+placeholders(2, len(quizIDs))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("quiz: favourites: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("quiz: favourites: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}
