package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDSN(t *testing.T) {
	cfg := Config{
		Host:     "db",
		Port:     "5432",
		User:     "byahe",
		Password: "pw",
		DBName:   "byahenow",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=byahe password=pw dbname=byahenow sslmode=disable", cfg.DSN())
}
