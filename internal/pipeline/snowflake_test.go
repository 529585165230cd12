package pipeline

import (
	"bytes"
	"context"
	"testing"
	"time"

	"featuredrop/internal/snowflake"
	"featuredrop/pkg/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lookupSQL = "SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?"

func newSnowflakeSession(t *testing.T) (*snowflake.Service, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return snowflake.NewServiceWithDB(db, snowflake.Config{Timeout: 5 * time.Second}), mock
}

func expectLookup(mock sqlmock.Sqlmock, table string, count int64) {
	mock.ExpectQuery(lookupSQL).
		WithArgs("FEATURE_STORE", table).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(count))
}

func featureRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"USER_ID", "TOTAL_PURCHASES", "TOTAL_SPENT"}).
		AddRow("a", []byte("1"), []byte("10.00")).
		AddRow("b", []byte("2"), []byte("20.00")).
		AddRow("c", []byte("3"), []byte("30.00")).
		AddRow("d", []byte("4"), []byte("40.00")).
		AddRow("e", []byte("5"), []byte("50.00")).
		AddRow("f", nil, []byte("60.00"))
}

func TestMaterializeAgainstSnowflake(t *testing.T) {
	svc, mock := newSnowflakeSession(t)

	expectLookup(mock, "USER_FEATURES", 1)
	mock.ExpectQuery("SELECT * FROM FEATURE_STORE.USER_FEATURES LIMIT 10").WillReturnRows(featureRows())
	mock.ExpectExec("CREATE OR REPLACE TABLE FEATURE_STORE.USER_FEATURES_VIEW AS SELECT * FROM FEATURE_STORE.USER_FEATURES").
		WillReturnResult(sqlmock.NewResult(0, 6))
	expectLookup(mock, "USER_FEATURES_VIEW", 1)
	mock.ExpectQuery("SELECT * FROM FEATURE_STORE.USER_FEATURES_VIEW LIMIT 10").WillReturnRows(featureRows())

	var out bytes.Buffer
	dst, err := Materialize(context.Background(), svc, testPipeline(t), &out)
	require.NoError(t, err)

	assert.Equal(t, "FEATURE_STORE.USER_FEATURES_VIEW", dst.Name())
	assert.Contains(t, out.String(), "NULL")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainAgainstSnowflake(t *testing.T) {
	svc, mock := newSnowflakeSession(t)

	expectLookup(mock, "USER_FEATURES_VIEW", 1)
	mock.ExpectQuery("SELECT * FROM FEATURE_STORE.USER_FEATURES_VIEW LIMIT 10").WillReturnRows(featureRows())
	mock.ExpectQuery("SELECT * FROM FEATURE_STORE.USER_FEATURES_VIEW").WillReturnRows(featureRows())

	result, err := Train(context.Background(), svc, testPipeline(t), &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.DroppedRows)
	assert.InDelta(t, 10.0, result.Model.Slope, 1e-9)
	assert.InDelta(t, 1.0, result.Metrics.R2, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainAgainstSnowflakeMissingView(t *testing.T) {
	svc, mock := newSnowflakeSession(t)

	expectLookup(mock, "USER_FEATURES_VIEW", 0)

	result, err := Train(context.Background(), svc, testPipeline(t), &bytes.Buffer{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTableNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
