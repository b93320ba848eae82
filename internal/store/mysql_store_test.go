package store

import (
	"errors"
	"testing"
	"time"

	"trivai/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLMockStore(t *testing.T) (*SQLFactStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: conn, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return &SQLFactStore{db: db}, mock
}

func TestSQLInsertIfAbsent(t *testing.T) {
	fact := &models.TriviaFact{ArticleTitle: "Berlin", Text: "Berlin became the capital of Prussia in 1701.", SourceURL: "https://en.wikipedia.org/wiki/Berlin"}
	insert := "INSERT INTO `trivia` .* ON DUPLICATE KEY UPDATE"

	s, mock := newSQLMockStore(t)
	mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(insert).WillReturnError(errors.New("connection refused"))

	res, err := s.InsertIfAbsent(t.Context(), fact)
	require.NoError(t, err)
	assert.Equal(t, Inserted, res)

	res, err = s.InsertIfAbsent(t.Context(), fact)
	require.NoError(t, err)
	assert.Equal(t, AlreadyPresent, res)

	_, err = s.InsertIfAbsent(t.Context(), fact)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorContains(t, err, "connection refused")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSampleRandom(t *testing.T) {
	const sample = "SELECT \\* FROM `trivia` ORDER BY RAND\\(\\)"
	columns := []string{"id", "article_name", "result", "wiki_url", "created_at"}

	s, mock := newSQLMockStore(t)
	mock.ExpectQuery(sample).WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectQuery(sample).WillReturnRows(sqlmock.NewRows(columns).
		AddRow(1, "Berlin", "Berlin became the capital of Prussia in 1701.", "https://en.wikipedia.org/wiki/Berlin", time.Now()))

	_, err := s.SampleRandom(t.Context())
	assert.ErrorIs(t, err, ErrEmpty)

	got, err := s.SampleRandom(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Berlin", got.ArticleTitle)
	assert.Equal(t, models.OriginFallback, got.Origin)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLFindByTitleAndCount(t *testing.T) {
	s, mock := newSQLMockStore(t)
	mock.ExpectQuery("SELECT \\* FROM `trivia` WHERE article_name = \\?").
		WithArgs("Atlantis", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "article_name"}))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `trivia`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(4))

	_, err := s.FindByTitle(t.Context(), "Atlantis")
	assert.ErrorIs(t, err, models.ErrNotFound)

	n, err := s.Count(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}
