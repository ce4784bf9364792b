package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/adboardapp/adboard/internal/common"
	"github.com/adboardapp/adboard/internal/logging"
)

const (
	detailAdQuery   = `(?s)^SELECT\s+id,.*FROM\s+ads\s+WHERE\s+id\s*=\s*\$1\s*$`
	detailUserQuery = `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
)

func newDetailWithMock(t *testing.T) (*DetailService, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewDetailService(db, &logging.NopLogger{}, time.Second), mock, db
}

func detailAdRow(id, userID string, active bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "title", "description", "category",
		"price", "city", "images", "active", "created_at"}).
		AddRow(id, userID, "City bike", "barely used", "Other",
			120.0, "Tehran", []byte(`["a.jpg"]`), active, time.Now())
}

func detailUserRow(id string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "phone", "name", "created_at", "updated_at"}).
		AddRow(id, "09121234567", "alice", time.Now(), time.Now())
}

func TestDetailGet_Success(t *testing.T) {
	svc, mock, db := newDetailWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(detailAdQuery).WithArgs("a-1").WillReturnRows(detailAdRow("a-1", "u-1", true))
	mock.ExpectQuery(detailUserQuery).WithArgs("u-1").WillReturnRows(detailUserRow("u-1"))
	mock.ExpectCommit()

	det, err := svc.Get(context.Background(), "a-1")
	require.NoError(t, err)
	require.Equal(t, "a-1", det.Ad.ID)
	require.Equal(t, "City bike", det.Ad.Title)
	require.Equal(t, []string{"a.jpg"}, det.Ad.Images)
	require.NotNil(t, det.Seller)
	require.Equal(t, "alice", det.Seller.Name)
	require.Equal(t, "09121234567", det.Seller.Phone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDetailGet_InactiveAdNotFound(t *testing.T) {
	svc, mock, db := newDetailWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(detailAdQuery).WithArgs("a-1").WillReturnRows(detailAdRow("a-1", "u-1", false))
	mock.ExpectRollback()

	_, err := svc.Get(context.Background(), "a-1")
	require.ErrorIs(t, err, common.ErrNotFound)
	// not found is final, no retry
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDetailGet_MissingAdNotFound(t *testing.T) {
	svc, mock, db := newDetailWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(detailAdQuery).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDetailGet_SellerGoneStillShowsAd(t *testing.T) {
	svc, mock, db := newDetailWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(detailAdQuery).WithArgs("a-1").WillReturnRows(detailAdRow("a-1", "u-gone", true))
	mock.ExpectQuery(detailUserQuery).WithArgs("u-gone").WillReturnError(sql.ErrNoRows)
	mock.ExpectCommit()

	det, err := svc.Get(context.Background(), "a-1")
	require.NoError(t, err)
	require.Equal(t, "a-1", det.Ad.ID)
	require.Nil(t, det.Seller)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDetailGet_StoreFailureRetriesThenFails(t *testing.T) {
	svc, mock, db := newDetailWithMock(t)
	defer db.Close()

	// initial attempt plus two retries
	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(detailAdQuery).WithArgs("a-1").WillReturnError(errors.New("db down"))
		mock.ExpectRollback()
	}

	_, err := svc.Get(context.Background(), "a-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "db down")
	require.NoError(t, mock.ExpectationsWereMet())
}
