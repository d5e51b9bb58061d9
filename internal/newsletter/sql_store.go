package newsletter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// SQLStore keeps subscribers in the newsletter_subscribers table.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	if db == nil {
		panic("newsletter: sql db required")
	}
	return &SQLStore{db: db}
}

func (s *SQLStore) Subscribe(ctx context.Context, sub *Subscriber) error {
	if sub.Interests == nil {
		sub.Interests = []string{}
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO newsletter_subscribers (email, source, interests)
		VALUES ($1, $2, $3)
		RETURNING id::text, created_at`,
		sub.Email, sub.Source, pq.Array(sub.Interests)).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("newsletter: insert subscriber: %w", err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]*Subscriber, int, error) {
	where := ""
	var args []any
	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		where = " WHERE email ILIKE $1"
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM newsletter_subscribers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("newsletter: count subscribers: %w", err)
	}

	column := "created_at"
	if filter.SortBy == "email" {
		column = "email"
	}
	dir := "DESC"
	if filter.Ascending {
		dir = "ASC"
	}
	var query strings.Builder
	fmt.Fprintf(&query, `SELECT id::text, email, source, interests, created_at FROM newsletter_subscribers%s ORDER BY %s %s, id %s`, where, column, dir, dir)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&query, " OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("newsletter: list subscribers: %w", err)
	}
	defer rows.Close()

	out := []*Subscriber{}
	for rows.Next() {
		var sub Subscriber
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.Source, pq.Array(&sub.Interests), &sub.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("newsletter: scan subscriber: %w", err)
		}
		if sub.Interests == nil {
			sub.Interests = []string{}
		}
		out = append(out, &sub)
	}
	return out, total, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM newsletter_subscribers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("newsletter: delete subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("newsletter: delete subscriber: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// likeEscaper keeps %, _ and \ in a search term literal for ILIKE.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
