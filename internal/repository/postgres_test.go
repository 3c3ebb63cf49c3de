package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/season-stats-service/internal/config"
)

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN(config.PostgresConfig{
		Host: "db", Port: 5433, User: "stats", Password: "p@ss word", DBName: "league", SSLMode: "disable",
	})
	assert.Equal(t, "postgres://stats:p%40ss%20word@db:5433/league?sslmode=disable", dsn)
}

func TestBuildDSN_NoCredentials(t *testing.T) {
	dsn := BuildDSN(config.PostgresConfig{Host: "localhost", Port: 5432, DBName: "league"})
	assert.Equal(t, "postgres://localhost:5432/league", dsn)
}
