package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ayurcare/backend/internal/domain/purchase"
	"github.com/ayurcare/backend/internal/domain/shared"
)

func TestGormMedicineRepository_FindByID_Postgres(t *testing.T) {
	t.Run("maps the row to a medicine", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormMedicineRepository(gormDB)

		id := uuid.New()
		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version", "name", "hsn_code", "unit_name", "sub_unit_name", "total_quantity_in_a_unit"}).
			AddRow(id, now, now, 1, "Brahmi Vati", "3004", "strip", "tablet", "10")

		mock.ExpectQuery(`SELECT \* FROM "medicines" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnRows(rows)

		med, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Brahmi Vati", med.Name)
		assert.Equal(t, "10", med.TotalQuantityInAUnit.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("record not found maps to NOT_FOUND", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormMedicineRepository(gormDB)

		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "medicines" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		med, err := repo.FindByID(context.Background(), id)
		assert.Nil(t, med)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseRepository_Delete_Postgres(t *testing.T) {
	t.Run("deletes stock, items and purchase in one transaction", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormPurchaseRepository(gormDB)

		id := uuid.New()
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "stock_entries" WHERE purchase_id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM "purchase_items" WHERE purchase_id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM "purchases" WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Delete(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing purchase rolls back", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormPurchaseRepository(gormDB)

		id := uuid.New()
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "stock_entries"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "purchase_items"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "purchases"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Delete(context.Background(), id), purchase.ErrPurchaseNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
