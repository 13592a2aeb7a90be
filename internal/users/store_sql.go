package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const userCols = `id,username,password_hash,role,score_normal,score_multiple,score,created_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role,
		&u.ScoreNormal, &u.ScoreMultiple, &u.Score, &u.CreatedAt)
	return u, err
}

// Create inserts u, assigning an id when empty.
func (s *SQLStore) Create(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = "student"
	}
	if u.CreatedAt == 0 {
		u.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Username, u.PasswordHash, u.Role, u.ScoreNormal, u.ScoreMultiple,
		u.ScoreNormal+u.ScoreMultiple, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUsernameTaken
		}
		return User{}, fmt.Errorf("users: create: %w", err)
	}
	u.Score = u.ScoreNormal + u.ScoreMultiple
	return u, nil
}

// EnsureAdmin creates the bootstrap admin account if no user has that name.
func (s *SQLStore) EnsureAdmin(ctx context.Context, username, passHash string) error {
	_, err := s.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	_, err = s.Create(ctx, User{Username: username, PasswordHash: passHash, Role: "admin"})
	if errors.Is(err, ErrUsernameTaken) {
		return nil
	}
	return err
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("users: get: %w", err)
	}
	return u, nil
}

func (s *SQLStore) GetByUsername(ctx context.Context, username string) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE username=$1`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("users: get: %w", err)
	}
	return u, nil
}

func (s *SQLStore) List(ctx context.Context, role string) ([]User, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if role == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY username`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+userCols+` FROM users WHERE role=$1 ORDER BY username`, role)
	}
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("users: list: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("users: count: %w", err)
	}
	return n, nil
}

// Ranking lists users by total score, highest first; ties break on username.
func (s *SQLStore) Ranking(ctx context.Context, limit, offset int) ([]RankingEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username,score_normal,score_multiple,score FROM users
		ORDER BY score DESC, username ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("users: ranking: %w", err)
	}
	defer rows.Close()
	out := []RankingEntry{}
	for rows.Next() {
		e := RankingEntry{Rank: offset + len(out) + 1}
		if err := rows.Scan(&e.Username, &e.ScoreNormal, &e.ScoreMultiple, &e.Score); err != nil {
			return nil, fmt.Errorf("users: ranking: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveScores writes the listed score fields of u. Mode columns only move up
// (col < new), and the total is always derived in SQL from the stored mode
// columns, so concurrent writers converge on the per-mode maximum.
func (s *SQLStore) SaveScores(ctx context.Context, u User, fields []Field) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("users: save scores: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, f := range fields {
		switch f {
		case FieldScoreNormal:
			_, err = tx.ExecContext(ctx,
				`UPDATE users SET score_normal=$1 WHERE id=$2 AND score_normal < $1`, u.ScoreNormal, u.ID)
		case FieldScoreMultiple:
			_, err = tx.ExecContext(ctx,
				`UPDATE users SET score_multiple=$1 WHERE id=$2 AND score_multiple < $1`, u.ScoreMultiple, u.ID)
		case FieldScore:
			// derived below
		default:
			err = fmt.Errorf("unknown field %q", f)
		}
		if err != nil {
			return fmt.Errorf("users: save scores: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, `UPDATE users SET score = score_normal + score_multiple WHERE id=$1`, u.ID)
	if err != nil {
		return fmt.Errorf("users: save scores: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("users: save scores: commit: %w", err)
	}
	return nil
}

// ResetScores zeroes every score column of a user.
func (s *SQLStore) ResetScores(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET score_normal=0, score_multiple=0, score=0 WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("users: reset scores: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite: UNIQUE constraint failed
		strings.Contains(msg, "duplicate key value") || // postgres
		strings.Contains(msg, "sqlstate 23505")
}
