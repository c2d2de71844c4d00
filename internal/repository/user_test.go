package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/perfil-app/perfil-api/internal/model"
)

var fixedNow = time.Date(2025, time.October, 24, 10, 30, 0, 500, time.UTC)

func newRepoWithMock(t *testing.T, dialect Dialect) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sqlmock expectations: %v", err)
		}
		db.Close()
	})

	repo := NewUserRepository(db, dialect)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func newUser() *model.User {
	return &model.User{Name: "Ana", Email: "ana@x.com", PasswordHash: "$argon2id$hash"}
}

func TestCreate_MySQL(t *testing.T) {
	repo, mock := newRepoWithMock(t, DialectMySQL)

	q := regexp.QuoteMeta(`INSERT INTO usuarios (nome, email, senha_hash, data_criacao) VALUES (?, ?, ?, ?)`)
	mock.ExpectExec(q).
		WithArgs("Ana", "ana@x.com", "$argon2id$hash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	u := newUser()
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if u.ID != 7 {
		t.Errorf("ID = %d, want 7", u.ID)
	}
	if want := fixedNow.Truncate(time.Second); !u.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", u.CreatedAt, want)
	}
}

func TestCreate_Postgres(t *testing.T) {
	repo, mock := newRepoWithMock(t, DialectPostgres)

	q := regexp.QuoteMeta(`INSERT INTO usuarios (nome, email, senha_hash, data_criacao) VALUES ($1, $2, $3, $4) RETURNING id`)
	mock.ExpectQuery(q).
		WithArgs("Ana", "ana@x.com", "$argon2id$hash", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	u := newUser()
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if u.ID != 9 {
		t.Errorf("ID = %d, want 9", u.ID)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		dbErr   error
	}{
		{"mysql 1062", DialectMySQL, &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ana@x.com' for key 'uq_usuarios_email'"}},
		{"postgres 23505", DialectPostgres, &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t, tt.dialect)
			if tt.dialect == DialectPostgres {
				mock.ExpectQuery(`INSERT INTO usuarios`).WillReturnError(tt.dbErr)
			} else {
				mock.ExpectExec(`INSERT INTO usuarios`).WillReturnError(tt.dbErr)
			}

			u := newUser()
			err := repo.Create(context.Background(), u)
			if !errors.Is(err, ErrDuplicateEmail) {
				t.Fatalf("Create error = %v, want ErrDuplicateEmail", err)
			}
			if u.ID != 0 {
				t.Errorf("ID = %d, want 0 after failed insert", u.ID)
			}
		})
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t, DialectMySQL)
	mock.ExpectExec(`INSERT INTO usuarios`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), newUser())
	if err == nil || errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("Create error = %v, want wrapped db error", err)
	}
	if !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestGetByEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t, DialectMySQL)

	q := regexp.QuoteMeta(`SELECT id, nome, email, senha_hash, data_criacao FROM usuarios WHERE email = ?`)
	rows := sqlmock.NewRows([]string{"id", "nome", "email", "senha_hash", "data_criacao"}).
		AddRow(int64(3), "Ana", "ana@x.com", "$argon2id$hash", fixedNow)
	mock.ExpectQuery(q).WithArgs("ana@x.com").WillReturnRows(rows)

	u, err := repo.GetByEmail(context.Background(), "ana@x.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if u.ID != 3 || u.Name != "Ana" || u.PasswordHash != "$argon2id$hash" {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestGetByID_Postgres(t *testing.T) {
	repo, mock := newRepoWithMock(t, DialectPostgres)

	q := regexp.QuoteMeta(`SELECT id, nome, email, senha_hash, data_criacao FROM usuarios WHERE id = $1`)
	rows := sqlmock.NewRows([]string{"id", "nome", "email", "senha_hash", "data_criacao"}).
		AddRow(int64(3), "Ana", "ana@x.com", "$argon2id$hash", fixedNow)
	mock.ExpectQuery(q).WithArgs(int64(3)).WillReturnRows(rows)

	u, err := repo.GetByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if u.Email != "ana@x.com" {
		t.Errorf("Email = %q, want ana@x.com", u.Email)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t, DialectMySQL)

	empty := sqlmock.NewRows([]string{"id", "nome", "email", "senha_hash", "data_criacao"})
	mock.ExpectQuery(`FROM usuarios WHERE email`).WithArgs("nobody@x.com").WillReturnRows(empty)
	mock.ExpectQuery(`FROM usuarios WHERE id`).WithArgs(int64(99)).WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByEmail(context.Background(), "nobody@x.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByEmail error = %v, want ErrUserNotFound", err)
	}
	if _, err := repo.GetByID(context.Background(), 99); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByID error = %v, want ErrUserNotFound", err)
	}
}

func TestBind(t *testing.T) {
	mysqlRepo := NewUserRepository(nil, DialectMySQL)
	pgRepo := NewUserRepository(nil, DialectPostgres)

	q := `SELECT a FROM t WHERE b = ? AND c = ?`
	if got := mysqlRepo.bind(q); got != q {
		t.Errorf("mysql bind = %q, want unchanged", got)
	}
	if got, want := pgRepo.bind(q), `SELECT a FROM t WHERE b = $1 AND c = $2`; got != want {
		t.Errorf("postgres bind = %q, want %q", got, want)
	}
}

func TestIsDuplicateEntryError(t *testing.T) {
	if isDuplicateEntryError(nil) {
		t.Fatal("nil error should not be a duplicate entry error")
	}
	if isDuplicateEntryError(ErrUserNotFound) {
		t.Fatal("ErrUserNotFound should not be a duplicate entry error")
	}
	if isDuplicateEntryError(&mysql.MySQLError{Number: 1045}) {
		t.Fatal("access denied should not be a duplicate entry error")
	}
	if isDuplicateEntryError(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign key violation should not be a duplicate entry error")
	}
}
