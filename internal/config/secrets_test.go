package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDatabaseSecret(t *testing.T) {
	db := DatabaseConfig{
		Driver:  "postgres",
		URL:     "postgres://local/dev",
		Host:    "localhost",
		Port:    5432,
		SSLMode: "require",
	}

	err := applyDatabaseSecret(&db, []byte(`{"host":"league.cluster.rds.amazonaws.com","port":6432,"username":"league","password":"s3cret","dbname":"league"}`))
	require.NoError(t, err)

	assert.Equal(t, "league.cluster.rds.amazonaws.com", db.Host)
	assert.Equal(t, 6432, db.Port)
	assert.Equal(t, "league", db.User)
	assert.Equal(t, "s3cret", db.Password)
	assert.Equal(t, "league", db.DBName)
	assert.Empty(t, db.URL)
	assert.Contains(t, db.DSN(), "host=league.cluster.rds.amazonaws.com port=6432")
}

func TestApplyDatabaseSecret_StringPortAndEngine(t *testing.T) {
	db := DatabaseConfig{Driver: "postgres"}

	err := applyDatabaseSecret(&db, []byte(`{"engine":"mysql","host":"db","port":"3306","username":"u","password":"p","dbname":"league"}`))
	require.NoError(t, err)

	assert.Equal(t, "mysql", db.Driver)
	assert.Equal(t, 3306, db.Port)
	assert.Equal(t, "u:p@tcp(db:3306)/league?charset=utf8mb4&parseTime=True&loc=UTC", db.DSN())
}

func TestApplyDatabaseSecret_Invalid(t *testing.T) {
	db := DatabaseConfig{}
	assert.Error(t, applyDatabaseSecret(&db, []byte(`not json`)))
	assert.Error(t, applyDatabaseSecret(&db, []byte(`{"port":"abc"}`)))
}
