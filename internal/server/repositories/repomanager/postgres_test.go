package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/server/migrations"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
)

func newDB(t *testing.T, opts ...sqlmock.Option) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(opts...)
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestUsers_ReturnsPostgresRepo(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager()

	u := m.Users(db)
	if u == nil {
		t.Fatal("Users() nil")
	}
	if _, ok := u.(*users.PostgresRepository); !ok {
		t.Fatalf("unexpected repository type %T", u)
	}
}

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(migrations.Migrations, "*.sql")
	if err != nil {
		t.Fatalf("glob error: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no embedded migrations")
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "migration error: boom" {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func withSeams(t *testing.T, db *sql.DB, maxRetries uint64) {
	t.Helper()
	origOpen, origBackoff := openDB, pingBackoff
	openDB = func(string) (*sql.DB, error) { return db, nil }
	pingBackoff = func() retry.Backoff {
		return retry.WithMaxRetries(maxRetries, retry.NewConstant(time.Millisecond))
	}
	t.Cleanup(func() { openDB, pingBackoff = origOpen, origBackoff })
}

func TestOpen_RetriesPing(t *testing.T) {
	db, mock := newDB(t, sqlmock.MonitorPingsOption(true))
	defer db.Close()
	withSeams(t, db, 3)

	mock.ExpectPing().WillReturnError(errors.New("starting up"))
	mock.ExpectPing()

	got, err := Open(context.Background(), "postgres://ignored")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if got != db {
		t.Fatal("Open must return the opened handle")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ping expectations: %v", err)
	}
}

func TestOpen_GivesUp(t *testing.T) {
	db, mock := newDB(t, sqlmock.MonitorPingsOption(true))
	withSeams(t, db, 1)

	mock.ExpectPing().WillReturnError(errors.New("down"))
	mock.ExpectPing().WillReturnError(errors.New("down"))
	mock.ExpectClose()

	if _, err := Open(context.Background(), "postgres://ignored"); err == nil {
		t.Fatal("expected ping error")
	}
}

func TestOpen_OpenError(t *testing.T) {
	origOpen := openDB
	openDB = func(string) (*sql.DB, error) { return nil, errors.New("bad dsn") }
	defer func() { openDB = origOpen }()

	if _, err := Open(context.Background(), "::"); err == nil {
		t.Fatal("expected open error")
	}
}
