package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/GreenCart/internal/models"
)

var productCols = []string{"id", "dispensary_id", "name", "category", "strain", "thc", "price_cents", "image_url"}

func setupProductMock(t *testing.T) (*PostgresProductRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	return NewPostgresProductRepository(db), mock, func() { db.Close() }
}

func TestListByDispensary(t *testing.T) {
	repo, mock, cleanup := setupProductMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE dispensary_id = $1 ORDER BY category, name`)).
		WithArgs("Canyon-Kind-Texas-12").
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p1", "Canyon-Kind-Texas-12", "Blue Dream 3.5g", "flower", "Blue Dream", "21%", int64(3500), "").
			AddRow("p2", "Canyon-Kind-Texas-12", "Mango Gummies", "edible", "", "", int64(1800), "/img/g.png"))

	got, err := repo.ListByDispensary(context.Background(), "Canyon-Kind-Texas-12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].PriceCents != 3500 || got[1].ImageURL != "/img/g.png" {
		t.Errorf("unexpected products: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListByDispensary_Empty(t *testing.T) {
	repo, mock, cleanup := setupProductMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE dispensary_id = $1`)).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(productCols))

	got, err := repo.ListByDispensary(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestListByDispensary_ScanError(t *testing.T) {
	repo, mock, cleanup := setupProductMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE dispensary_id = $1`)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p1", "d", "n", "c", "s", "t", "not-a-number", ""))

	if _, err := repo.ListByDispensary(context.Background(), "d"); err == nil {
		t.Error("expected scan error")
	}
}

func TestGetByID(t *testing.T) {
	repo, mock, cleanup := setupProductMock(t)
	defer cleanup()

	q := regexp.QuoteMeta(`FROM products WHERE id = $1`)
	mock.ExpectQuery(q).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p1", "d", "Pre-roll", "preroll", "OG Kush", "18%", int64(1200), ""))
	mock.ExpectQuery(q).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(productCols))

	p, err := repo.GetByID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Strain != "OG Kush" {
		t.Errorf("unexpected product: %+v", p)
	}
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsert_Success(t *testing.T) {
	repo, mock, cleanup := setupProductMock(t)
	defer cleanup()

	products := []models.Product{
		{ID: "p1", DispensaryID: "d", Name: "A", PriceCents: 100},
		{ID: "p2", DispensaryID: "d", Name: "B", PriceCents: 200},
	}
	mock.ExpectBegin()
	for _, p := range products {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO products`)).
			WithArgs(p.ID, p.DispensaryID, p.Name, p.Category, p.Strain, p.THC, p.PriceCents, p.ImageURL).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	if err := repo.Upsert(context.Background(), products); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpsert_RollbackOnError(t *testing.T) {
	repo, mock, cleanup := setupProductMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO products`)).
		WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := repo.Upsert(context.Background(), []models.Product{{ID: "p1", PriceCents: -1}})
	if err == nil || !regexp.MustCompile(`upsert`).MatchString(err.Error()) {
		t.Errorf("expected upsert error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, cleanup := setupProductMock(t)
	defer cleanup()

	q := regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)
	mock.ExpectExec(q).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("p9").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Delete(context.Background(), "p9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
