package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leadColumnNames = []string{
	"id", "kind", "name", "email", "phone", "model", "date", "time",
	"notes", "location", "campaign", "lead_source", "fields", "created_at",
}

func TestPostgresStore_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO leads").
		WithArgs(pgxmock.AnyArg(), "quote", "Jane Doe", "", "+971501234567", "ET5", "", "", "", "", "", "Website", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	store := NewPostgresStore(mock)
	lead := &Lead{Kind: KindQuote, Name: "Jane Doe", Phone: "+971501234567", Model: "ET5", LeadSource: "Website"}
	require.NoError(t, store.Create(context.Background(), lead))

	_, err = uuid.Parse(lead.ID)
	assert.NoError(t, err)
	assert.Equal(t, createdAt, lead.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateInsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO leads").WillReturnError(errors.New("connection refused"))

	store := NewPostgresStore(mock)
	err = store.Create(context.Background(), &Lead{Kind: KindQuote})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leads: insert failed")
}

func TestPostgresStore_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.NewString()
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM leads WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(leadColumnNames).AddRow(
			id, "test_drive", "Jane", "jane@example.com", "+971501234567", "ET5",
			"2026-03-04", "14:30:00", "Weekend please", "Dubai", "Spring", "Website",
			[]byte(`{"CarModal":"ET5"}`), createdAt,
		))

	store := NewPostgresStore(mock)
	lead, err := store.Get(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, lead.ID)
	assert.Equal(t, KindTestDrive, lead.Kind)
	assert.Equal(t, "ET5", lead.Fields["CarModal"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.NewString()
	mock.ExpectQuery(`SELECT (.+) FROM leads WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(leadColumnNames))

	store := NewPostgresStore(mock)
	_, err = store.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrLeadNotFound)

	_, err = store.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestPostgresStore_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads WHERE 1=1 AND kind = \$1 AND \(name ILIKE \$2`).
		WithArgs("quote", "%et5%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY name ASC, id ASC LIMIT \$3 OFFSET \$4`).
		WithArgs("quote", "%et5%", 20, 0).
		WillReturnRows(pgxmock.NewRows(leadColumnNames).AddRow(
			uuid.NewString(), "quote", "Omar", "", "+971", "ET5", "", "", "", "", "", "Website",
			[]byte(`null`), createdAt,
		))

	store := NewPostgresStore(mock)
	leads, total, err := store.List(context.Background(), ListFilter{
		Kind:      KindQuote,
		Search:    "et5",
		SortBy:    "name",
		Ascending: true,
		Limit:     20,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	require.Len(t, leads, 1)
	assert.Equal(t, "Omar", leads[0].Name)
	assert.Nil(t, leads[0].Fields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.NewString()
	mock.ExpectExec("DELETE FROM leads").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM leads").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	store := NewPostgresStore(mock)
	require.NoError(t, store.Delete(context.Background(), id))
	assert.ErrorIs(t, store.Delete(context.Background(), id), ErrLeadNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListEscapesSearchWildcards(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads WHERE 1=1 AND \(name ILIKE \$1`).
		WithArgs(`%50\%\_off\\%`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC$`).
		WithArgs(`%50\%\_off\\%`).
		WillReturnRows(pgxmock.NewRows(leadColumnNames))

	_, total, err := NewPostgresStore(mock).List(context.Background(), ListFilter{Search: `50%_off\`})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
