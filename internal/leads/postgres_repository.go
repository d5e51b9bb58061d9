package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is the subset of pgxpool.Pool the store uses.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore stores leads in the relational database.
type PostgresStore struct {
	db pgxQuerier
}

// NewPostgresStore initializes a store backed by a pgx pool.
func NewPostgresStore(db pgxQuerier) *PostgresStore {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresStore{db: db}
}

const leadColumns = `id::text, kind, name, email, phone, model, date, time, notes, location, campaign, lead_source, fields, created_at`

// Create inserts a new row.
func (s *PostgresStore) Create(ctx context.Context, lead *Lead) error {
	id := uuid.New()
	if lead.ID != "" {
		parsed, err := uuid.Parse(lead.ID)
		if err != nil {
			return fmt.Errorf("leads: invalid id %q: %w", lead.ID, err)
		}
		id = parsed
	}
	fields, err := json.Marshal(lead.Fields)
	if err != nil {
		return fmt.Errorf("leads: encode fields: %w", err)
	}

	query := `
		INSERT INTO leads (id, kind, name, email, phone, model, date, time, notes, location, campaign, lead_source, fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := s.db.QueryRow(ctx, query,
		id,
		string(lead.Kind),
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Model,
		lead.Date,
		lead.Time,
		lead.Notes,
		lead.Location,
		lead.Campaign,
		lead.LeadSource,
		fields,
	).Scan(&createdAt); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}

	lead.ID = id.String()
	lead.CreatedAt = createdAt
	return nil
}

// Get fetches a single lead.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrLeadNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// List returns one page of leads plus the total matching count.
func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]*Lead, int, error) {
	where := " WHERE 1=1"
	var args []any
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		where += " AND kind = $" + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, likePattern(filter.Search))
		n := "$" + strconv.Itoa(len(args))
		where += " AND (name ILIKE " + n + " OR email ILIKE " + n + " OR phone ILIKE " + n + " OR model ILIKE " + n + ")"
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("leads: count failed: %w", err)
	}

	sortBy := "created_at"
	switch filter.SortBy {
	case "name", "model":
		sortBy = filter.SortBy
	}
	order := "DESC"
	if filter.Ascending {
		order = "ASC"
	}
	query := `SELECT ` + leadColumns + ` FROM leads` + where + ` ORDER BY ` + sortBy + ` ` + order + `, id ` + order
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += " LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("leads: list failed: %w", err)
	}
	return out, total, nil
}

// Delete removes a lead by ID.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrLeadNotFound
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("leads: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var (
		lead   Lead
		kind   string
		fields []byte
	)
	if err := row.Scan(
		&lead.ID,
		&kind,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Model,
		&lead.Date,
		&lead.Time,
		&lead.Notes,
		&lead.Location,
		&lead.Campaign,
		&lead.LeadSource,
		&fields,
		&lead.CreatedAt,
	); err != nil {
		return nil, err
	}
	lead.Kind = Kind(kind)
	if len(fields) > 0 && !strings.EqualFold(string(fields), "null") {
		if err := json.Unmarshal(fields, &lead.Fields); err != nil {
			return nil, fmt.Errorf("decode fields: %w", err)
		}
	}
	return &lead, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern matches search literally inside ILIKE; backslash is the
// default escape character.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}
