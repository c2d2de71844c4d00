package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/perfil-app/perfil-api/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

const (
	mysqlDuplicateEntry   = 1062
	postgresUniqueViolate = "23505"
)

// UserRepository is the credential store. Rows are only ever inserted and read.
type UserRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB, dialect Dialect) *UserRepository {
	return &UserRepository{db: db, dialect: dialect, now: time.Now}
}

// Create inserts a new user and sets the generated ID and creation time on the user struct.
// The unique index on email rejects concurrent inserts of the same address.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	createdAt := r.now().UTC().Truncate(time.Second)
	query := `INSERT INTO usuarios (nome, email, senha_hash, data_criacao) VALUES (?, ?, ?, ?)`

	var id int64
	if r.dialect == DialectPostgres {
		err := r.db.QueryRowContext(ctx, r.bind(query)+` RETURNING id`,
			user.Name, user.Email, user.PasswordHash, createdAt,
		).Scan(&id)
		if err != nil {
			return r.insertError(err)
		}
	} else {
		result, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.PasswordHash, createdAt)
		if err != nil {
			return r.insertError(err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}

	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, nome, email, senha_hash, data_criacao FROM usuarios WHERE email = ?`
	return r.getOne(ctx, query, email)
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT id, nome, email, senha_hash, data_criacao FROM usuarios WHERE id = ?`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, r.bind(query), arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

func (r *UserRepository) insertError(err error) error {
	if isDuplicateEntryError(err) {
		return ErrDuplicateEmail
	}
	return fmt.Errorf("db error: %w", err)
}

// bind rewrites ? placeholders to $n for PostgreSQL.
func (r *UserRepository) bind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// isDuplicateEntryError reports a unique-key violation from either driver.
func isDuplicateEntryError(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresUniqueViolate
	}

	return false
}
