package properties

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bienesraices/internal/common"
	"github.com/dmitrijs2005/bienesraices/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func propertyRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "category_id", "price_id",
		"rooms", "parking", "bathrooms", "street", "lat", "lng",
		"image_key", "published", "user_id", "created_at"}).
		AddRow("p-1", "Casa en la playa", "Muy bonita", 1, 2,
			3, 1, 2, "Calle 12", 20.66, -103.39,
			"2024/01/img.jpg", true, "u-1", time.Now())
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("p-42", time.Now())
	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+properties`).
		WithArgs("Casa en la playa", "Muy bonita", 1, 2, 3, 1, 2,
			"Calle 12", 20.66, -103.39, "u-1").
		WillReturnRows(rows)

	p := &models.Property{
		Title: "Casa en la playa", Description: "Muy bonita",
		CategoryID: 1, PriceID: 2, Rooms: 3, Parking: 1, Bathrooms: 2,
		Street: "Calle 12", Lat: 20.66, Lng: -103.39, UserID: "u-1",
	}
	got, err := repo.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "p-42" {
		t.Fatalf("unexpected property: %+v", got)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+properties\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("p-1").
		WillReturnRows(propertyRows())

	got, err := repo.GetByID(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ID != "p-1" || got.UserID != "u-1" || !got.Published {
		t.Fatalf("unexpected property: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+properties\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestSave_WrongRowsAffected(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*UPDATE\s+properties\s+SET\s+title`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), &models.Property{ID: "ghost"})
	if err == nil || !regexp.MustCompile(`unexpected rows affected: 0`).MatchString(err.Error()) {
		t.Fatalf("expected rows affected error, got %v", err)
	}
}

func TestCountByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT\s+COUNT\(\*\)\s+FROM\s+properties\s+WHERE\s+user_id\s*=\s*\$1$`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.CountByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("CountByUser error: %v", err)
	}
	if n != 7 {
		t.Fatalf("want 7, got %d", n)
	}
}

func TestSelectByUser_Paginates(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+properties\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC\s+LIMIT\s+\$2\s+OFFSET\s+\$3$`).
		WithArgs("u-1", 5, 10).
		WillReturnRows(propertyRows())

	got, err := repo.SelectByUser(context.Background(), "u-1", 5, 10)
	if err != nil {
		t.Fatalf("SelectByUser error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p-1" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestSelectPublished_JoinsLookups(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "title", "lat", "lng", "image_key",
		"category", "price", "category_id", "price_id"}).
		AddRow("p-1", "Casa en la playa", 20.66, -103.39, "2024/01/img.jpg",
			"Casa", "100.000 - 200.000 US$", 1, 2)

	mock.ExpectQuery(`(?s)^\s*SELECT\s+p\.id,.*JOIN\s+categories\s+c.*JOIN\s+price_ranges\s+pr.*WHERE\s+p\.published`).
		WillReturnRows(rows)

	got, err := repo.SelectPublished(context.Background())
	if err != nil {
		t.Fatalf("SelectPublished error: %v", err)
	}
	if len(got) != 1 || got[0].Category != "Casa" || got[0].Price != "100.000 - 200.000 US$" {
		t.Fatalf("unexpected listings: %+v", got)
	}
}

func TestSelectCategories(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(1, "Casa").AddRow(2, "Departamento")
	mock.ExpectQuery(`^SELECT\s+id,\s*name\s+FROM\s+categories\s+ORDER\s+BY\s+id$`).
		WillReturnRows(rows)

	got, err := repo.SelectCategories(context.Background())
	if err != nil {
		t.Fatalf("SelectCategories error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Casa" {
		t.Fatalf("unexpected categories: %+v", got)
	}
}
