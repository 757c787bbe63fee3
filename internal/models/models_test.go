package models

import (
	"encoding/json"
	"testing"

	"crack-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_Valid(t *testing.T) {
	for _, s := range Severities {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Severity("low").Valid())
	assert.False(t, Severity("").Valid())
	assert.False(t, Severity("Severe").Valid())
}

func TestAnalysisData_PreservesKeyOrder(t *testing.T) {
	var in struct {
		Data AnalysisData `json:"analysis_data"`
	}
	raw := `{"analysis_data":{"zeta":1,"alpha":{"b":2,"a":1},"mid":[3,2,1]}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &in))

	out, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestAnalysisData_EmptyAndNull(t *testing.T) {
	var in struct {
		Data AnalysisData `json:"analysis_data"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"analysis_data":null}`), &in))
	assert.Empty(t, in.Data)

	out, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"analysis_data":{}}`, string(out))

	v, err := in.Data.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestAnalysisData_ScanValue(t *testing.T) {
	var a AnalysisData
	require.NoError(t, a.Scan([]byte(`{"k":"v"}`)))
	assert.Equal(t, `{"k":"v"}`, string(a))

	require.NoError(t, a.Scan(`{"s":1}`))
	assert.Equal(t, `{"s":1}`, string(a))

	require.NoError(t, a.Scan(nil))
	assert.Empty(t, a)

	assert.Error(t, a.Scan(42))

	_, err := AnalysisData(`{broken`).Value()
	assert.Error(t, err)
}

func TestOpenDB_MigratesSQLite(t *testing.T) {
	db, err := OpenDB(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:", MaxOpenConns: 10})
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB(db) })

	require.NoError(t, AutoMigrate(db))
	assert.True(t, db.Migrator().HasTable(&User{}))
	assert.True(t, db.Migrator().HasTable(&CrackReport{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestOpenDB_UnknownDriver(t *testing.T) {
	_, err := OpenDB(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
