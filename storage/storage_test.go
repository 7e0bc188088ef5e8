package storage

import (
	"testing"
	"time"

	"github.com/vigourpt/themonneygate2/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "keyword_analysis_budgettracker_en_2840", SanitizeKey("keyword_analysis_budget tracker!_en_2840"))
	assert.Equal(t, "stripe_webhook_events.log", SanitizeKey("stripe_webhook_events.log"))
	assert.Equal(t, "a-b_c.d", SanitizeKey("a-b_c.d?*"))
}

func TestGetJSON_Found(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "documents" WHERE key = \$1 ORDER BY "documents"\."key" LIMIT \$2`).
		WithArgs("some_key", 1).
		WillReturnRows(mock.NewRows([]string{"key", "value", "updated_at"}).
			AddRow("some_key", []byte(`{"count": 3}`), time.Now()))

	var out map[string]int
	found, err := GetJSON("some_key", &out)

	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, out["count"])
}

func TestGetJSON_NotFound(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "documents" WHERE key = \$1 ORDER BY "documents"\."key" LIMIT \$2`).
		WithArgs("missing_key", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	var out map[string]int
	found, err := GetJSON("missing_key", &out)

	assert.NoError(t, err)
	assert.False(t, found)
}

func TestPutJSON_Upserts(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "documents" (.+) ON CONFLICT (.+) DO UPDATE SET (.+)`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := PutJSON("some_key", map[string]int{"count": 4})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
