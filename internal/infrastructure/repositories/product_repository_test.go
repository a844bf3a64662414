package repositories_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/product-catalog-api/internal/core/domain/product"
	"github.com/avatarctic/product-catalog-api/internal/core/ports"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/db"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/repositories"
)

var productCols = []string{"id", "name", "description", "price", "stock", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (ports.ProductRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	database := db.NewFromDB(sqlx.NewDb(sqlDB, "postgres"))
	return repositories.NewProductRepository(database, logrus.New()), mock
}

func TestProductRepository_FindPageWithSearch(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products WHERE name ILIKE $1`)).
		WithArgs(`%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs(`%50\%\_off%`, 10, 10).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(id.String(), "50%_off sale", "", "1.50", 2, now, now))

	term := "50%_off"
	items, total, err := repo.FindPage(context.Background(), product.Filter{NameContains: &term}, 2, 10)
	require.NoError(t, err)
	require.Equal(t, 11, total)
	require.Len(t, items, 1)
	require.Equal(t, id, items[0].ID)
	require.True(t, items[0].Price.Equal(decimal.RequireFromString("1.5")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_FindPageEmptySkipsSelect(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	items, total, err := repo.FindPage(context.Background(), product.Filter{}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 0, total)
	require.NotNil(t, items)
	require.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = $1`)).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(productCols))

	_, err := repo.GetByID(context.Background(), id)
	require.Error(t, err)
	require.True(t, errors.Is(err, product.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByIDDriverError(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = $1`)).
		WithArgs(id.String()).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), id)
	require.Error(t, err)
	require.False(t, errors.Is(err, product.ErrNotFound))
}

func TestProductRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	p := &product.Product{ID: uuid.New(), Name: "Widget", Price: decimal.RequireFromString("9.99"), CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO products`)).
		WithArgs(p.ID.String(), "Widget", "", "9.99", 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_UpdateMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	p := &product.Product{ID: uuid.New(), Name: "x", Price: decimal.NewFromInt(1), UpdatedAt: time.Now()}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), p)
	require.True(t, errors.Is(err, product.ErrNotFound))
}

func TestProductRepository_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), id))
	require.True(t, errors.Is(repo.Delete(context.Background(), id), product.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}
