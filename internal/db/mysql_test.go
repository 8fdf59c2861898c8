package db

import (
	"testing"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTCDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
	}{
		{name: "local location", dsn: "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local"},
		{name: "no options", dsn: "user:password@tcp(localhost:3306)/app"},
		{name: "already utc", dsn: "user:password@tcp(db:3306)/app?parseTime=true&loc=UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := utcDSN(tt.dsn)
			require.NoError(t, err)

			cfg, err := driver.ParseDSN(out)
			require.NoError(t, err)
			assert.Equal(t, time.UTC, cfg.Loc)
			assert.True(t, cfg.ParseTime)
			assert.Equal(t, "app", cfg.DBName)
		})
	}
}

func TestUTCDSN_Invalid(t *testing.T) {
	_, err := utcDSN("user:password@tcp(localhost:3306)app?loc=Nowhere/Invalid")
	assert.Error(t, err)
}
