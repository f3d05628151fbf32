package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"No rows", pgx.ErrNoRows, true},
		{"Wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), true},
		{"Malformed uuid", &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation}, true},
		{"Wrapped malformed uuid", fmt.Errorf("query: %w", &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation}), true},
		{"Unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, false},
		{"Other", errors.New("connection reset"), false},
		{"Nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotFound(tt.err))
		})
	}
}
