package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/property-service/internal/domain"
)

var propertyRowColumns = []string{"id", "address", "price", "bedrooms", "bathrooms", "type"}

func strPtr(s string) *string { return &s }

// Helper to create a valid property for testing.
func newTestProperty(id int64) *domain.Property {
	return &domain.Property{
		ID:        id,
		Address:   "12 Harbour Road",
		Price:     425000,
		Bedrooms:  3,
		Bathrooms: 2,
		Type:      strPtr("Townhouse"),
	}
}

func propertyRows(properties ...*domain.Property) *pgxmock.Rows {
	rows := pgxmock.NewRows(propertyRowColumns)
	for _, p := range properties {
		rows.AddRow(p.ID, p.Address, p.Price, p.Bedrooms, p.Bathrooms, p.Type)
	}
	return rows
}

// mockTransactor gives a pgxmock pool the commit-or-rollback behaviour of
// database.DB.WithTransaction.
type mockTransactor struct {
	pgxmock.PgxPoolIface
}

func (m mockTransactor) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func TestNewPgPropertyRepository(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgPropertyRepository(mock)
	assert.NotNil(t, repo)
	assert.NotNil(t, repo.db)
}

func TestPgPropertyRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("lists a page ordered by id", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPropertyRepository(mock)

		mock.ExpectQuery("SELECT id, address, price, bedrooms, bathrooms, type FROM properties ORDER BY id ASC LIMIT \\$1 OFFSET \\$2").
			WithArgs(10, 20).
			WillReturnRows(propertyRows(newTestProperty(21), newTestProperty(22)))

		results, err := repo.List(ctx, PropertyFilter{Limit: 10, Offset: 20})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, int64(21), results[0].ID)
		assert.Equal(t, int64(22), results[1].ID)
		assert.Equal(t, "Townhouse", results[0].TypeValue())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters by type", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPropertyRepository(mock)

		mock.ExpectQuery("SELECT .* FROM properties WHERE type = \\$1 ORDER BY id ASC LIMIT \\$2 OFFSET \\$3").
			WithArgs("Townhouse", 5, 0).
			WillReturnRows(propertyRows(newTestProperty(2)))

		results, err := repo.List(ctx, PropertyFilter{Type: strPtr("Townhouse"), Limit: 5})
		require.NoError(t, err)
		assert.Len(t, results, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("clamps limit to the maximum page size", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPropertyRepository(mock)

		mock.ExpectQuery("SELECT .* FROM properties ORDER BY id ASC LIMIT \\$1 OFFSET \\$2").
			WithArgs(MaxPageLimit, 0).
			WillReturnRows(propertyRows())

		results, err := repo.List(ctx, PropertyFilter{Limit: 5000, Offset: -3})
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps query errors", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPropertyRepository(mock)

		mock.ExpectQuery("SELECT .* FROM properties").
			WithArgs(DefaultPageLimit, 0).
			WillReturnError(errors.New("connection reset"))

		results, err := repo.List(ctx, PropertyFilter{})
		assert.Nil(t, results)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list properties")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgPropertyRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the property", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPropertyRepository(mock)
		expected := newTestProperty(7)

		mock.ExpectQuery("SELECT .* FROM properties WHERE id = \\$1").
			WithArgs(int64(7)).
			WillReturnRows(propertyRows(expected))

		p, err := repo.Get(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, expected, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPropertyRepository(mock)

		mock.ExpectQuery("SELECT .* FROM properties WHERE id = \\$1").
			WithArgs(int64(999)).
			WillReturnRows(propertyRows())

		p, err := repo.Get(ctx, 999)
		assert.Nil(t, p)
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		var nf *domain.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "999", nf.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgPropertyRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the property with its generated id", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPropertyRepository(mock)
		input := newTestProperty(0)

		mock.ExpectQuery("INSERT INTO properties \\(address, price, bedrooms, bathrooms, type\\)").
			WithArgs(input.Address, input.Price, input.Bedrooms, input.Bathrooms, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(127)))

		created, err := repo.Create(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, int64(127), created.ID)
		assert.Equal(t, input.Address, created.Address)
		assert.Equal(t, int64(0), input.ID, "input must not be mutated")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns validation error for nil property", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPropertyRepository(mock)
		_, err = repo.Create(ctx, nil)

		var validationErr *domain.ValidationError
		assert.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "property", validationErr.Field)
	})
}

func TestPgPropertyRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("merges and persists inside a transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPropertyRepository(mockTransactor{mock})
		existing := newTestProperty(4)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT .* FROM properties WHERE id = \\$1 FOR UPDATE").
			WithArgs(int64(4)).
			WillReturnRows(propertyRows(existing))
		mock.ExpectExec("UPDATE properties SET").
			WithArgs("1 New Street", existing.Price, existing.Bedrooms, existing.Bathrooms, pgxmock.AnyArg(), int64(4)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		updated, err := repo.Update(ctx, 4, func(p *domain.Property) error {
			p.Address = "1 New Street"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(4), updated.ID)
		assert.Equal(t, "1 New Street", updated.Address)
		assert.Equal(t, existing.Price, updated.Price)
		assert.Equal(t, "Townhouse", updated.TypeValue())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found error when property does not exist", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPropertyRepository(mockTransactor{mock})

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT .* FROM properties WHERE id = \\$1 FOR UPDATE").
			WithArgs(int64(999)).
			WillReturnRows(propertyRows())
		mock.ExpectRollback()

		called := false
		_, err = repo.Update(ctx, 999, func(p *domain.Property) error {
			called = true
			return nil
		})
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns the mutator error without writing", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPropertyRepository(mockTransactor{mock})
		abort := errors.New("abort")

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT .* FROM properties WHERE id = \\$1 FOR UPDATE").
			WithArgs(int64(4)).
			WillReturnRows(propertyRows(newTestProperty(4)))
		mock.ExpectRollback()

		_, err = repo.Update(ctx, 4, func(p *domain.Property) error { return abort })
		assert.ErrorIs(t, err, abort)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs directly on a DBTX that is already a transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPropertyRepository(mock)
		existing := newTestProperty(4)

		mock.ExpectQuery("SELECT .* FROM properties WHERE id = \\$1 FOR UPDATE").
			WithArgs(int64(4)).
			WillReturnRows(propertyRows(existing))
		mock.ExpectExec("UPDATE properties SET").
			WithArgs(existing.Address, existing.Price, 4.0, existing.Bathrooms, pgxmock.AnyArg(), int64(4)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		updated, err := repo.Update(ctx, 4, func(p *domain.Property) error {
			p.Bedrooms = 4
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 4.0, updated.Bedrooms)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure is returned", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPropertyRepository(mockTransactor{mock})
		mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

		_, err = repo.Update(ctx, 4, func(p *domain.Property) error { return nil })
		assert.ErrorContains(t, err, "connection refused")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgPropertyRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("reports one affected row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPropertyRepository(mock)

		mock.ExpectExec("DELETE FROM properties WHERE id = \\$1").
			WithArgs(int64(21)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		affected, err := repo.Delete(ctx, 21)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports zero affected rows for unknown id", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgPropertyRepository(mock)

		mock.ExpectExec("DELETE FROM properties WHERE id = \\$1").
			WithArgs(int64(999)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		affected, err := repo.Delete(ctx, 999)
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNewPageFilter(t *testing.T) {
	tests := []struct {
		name           string
		page, limit    int
		expectedLimit  int
		expectedOffset int
	}{
		{name: "defaults", page: 1, limit: 0, expectedLimit: 100, expectedOffset: 0},
		{name: "second default page", page: 2, limit: 0, expectedLimit: 100, expectedOffset: 100},
		{name: "third page of ten", page: 3, limit: 10, expectedLimit: 10, expectedOffset: 20},
		{name: "limit clamped", page: 1, limit: 500, expectedLimit: 100, expectedOffset: 0},
		{name: "page below one", page: 0, limit: 10, expectedLimit: 10, expectedOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewPageFilter(tt.page, tt.limit, nil)
			assert.Equal(t, tt.expectedLimit, f.Limit)
			assert.Equal(t, tt.expectedOffset, f.Offset)
			assert.Nil(t, f.Type)
		})
	}
}
