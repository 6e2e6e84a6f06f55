package repository

import (
	"errors"
	"fmt"
	"testing"

	repo "checkout-api/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	other := errors.New("boom")

	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"record not found", gorm.ErrRecordNotFound, repo.ErrNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, repo.ErrConflict},
		{"unique violation", &pgconn.PgError{Code: "23505"}, repo.ErrConflict},
		{"numeric overflow", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "22003"}), repo.ErrOutOfRange},
		{"other", other, other},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translate(tc.in)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}
