package messages

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
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

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("m-1", time.Now())
	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+messages\s*\(text,\s*property_id,\s*sender_id\)`).
		WithArgs("Me interesa esta propiedad, quisiera agendar una visita", "p-1", "u-2").
		WillReturnRows(rows)

	m := &models.Message{
		Text:       "Me interesa esta propiedad, quisiera agendar una visita",
		PropertyID: "p-1",
		SenderID:   "u-2",
	}
	got, err := repo.Create(context.Background(), m)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "m-1" {
		t.Fatalf("unexpected message: %+v", got)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+messages`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Message{Text: "hola", PropertyID: "p-1", SenderID: "u-2"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSelectByProperty_JoinsSenderName(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "text", "property_id", "sender_id", "name", "created_at"}).
		AddRow("m-1", "Primer mensaje sobre esta propiedad", "p-1", "u-2", "Ana", time.Now()).
		AddRow("m-2", "Segundo mensaje sobre esta propiedad", "p-1", "u-3", "Luis", time.Now())

	mock.ExpectQuery(`(?s)^\s*SELECT\s+m\.id,.*JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*m\.sender_id.*ORDER\s+BY\s+m\.created_at`).
		WithArgs("p-1").
		WillReturnRows(rows)

	got, err := repo.SelectByProperty(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("SelectByProperty error: %v", err)
	}
	if len(got) != 2 || got[0].SenderName != "Ana" || got[1].SenderName != "Luis" {
		t.Fatalf("unexpected messages: %+v", got)
	}
}
