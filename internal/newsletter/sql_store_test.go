package newsletter

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLStoreSubscribe(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO newsletter_subscribers").
		WithArgs("jane@example.com", "footer", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow("7f1c1f0e-8c1d-4d4e-9a51-0e7c5b7b8a10", created))

	store := NewSQLStore(db)
	sub := &Subscriber{Email: "jane@example.com", Source: "footer", Interests: []string{"ET5"}}
	require.NoError(t, store.Subscribe(context.Background(), sub))
	assert.Equal(t, "7f1c1f0e-8c1d-4d4e-9a51-0e7c5b7b8a10", sub.ID)
	assert.Equal(t, created, sub.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreSubscribeDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO newsletter_subscribers").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	err = NewSQLStore(db).Subscribe(context.Background(), &Subscriber{Email: "jane@example.com"})
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreSubscribeOtherError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO newsletter_subscribers").WillReturnError(errors.New("connection reset"))

	err = NewSQLStore(db).Subscribe(context.Background(), &Subscriber{Email: "jane@example.com"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDuplicate))
}

func TestSQLStoreListWithSearchAndPaging(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM newsletter_subscribers WHERE email ILIKE $1`)).
		WithArgs("%legend%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY email ASC, id ASC LIMIT $2 OFFSET $3`)).
		WithArgs("%legend%", 2, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "source", "interests", "created_at"}).
			AddRow("c3", "zed@legend.ae", "popup", []byte("{ET5,BE11}"), created))

	subs, total, err := NewSQLStore(db).List(context.Background(), ListFilter{
		Search:    "legend",
		SortBy:    "email",
		Ascending: true,
		Limit:     2,
		Offset:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, subs, 1)
	assert.Equal(t, "zed@legend.ae", subs[0].Email)
	assert.Equal(t, []string{"ET5", "BE11"}, subs[0].Interests)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := "7f1c1f0e-8c1d-4d4e-9a51-0e7c5b7b8a10"
	mock.ExpectExec("DELETE FROM newsletter_subscribers").WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM newsletter_subscribers").WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewSQLStore(db)
	require.NoError(t, store.Delete(context.Background(), id))
	assert.ErrorIs(t, store.Delete(context.Background(), id), ErrNotFound)
	assert.ErrorIs(t, store.Delete(context.Background(), "not-a-uuid"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
