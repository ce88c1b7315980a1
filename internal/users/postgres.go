package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JoshBaneyCS/betanito/internal/db"
)

const uniqueViolation = "23505"

// PostgresStore implements Store on the users table.
type PostgresStore struct {
	db db.DBTX
}

func NewPostgresStore(conn db.DBTX) *PostgresStore {
	return &PostgresStore{db: conn}
}

// Create inserts the user in one statement. Uniqueness of rut and mail is
// enforced by the table constraints only; there is no pre-check to race with.
func (s *PostgresStore) Create(ctx context.Context, user *User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	query :=
		`INSERT INTO users (id, name, surname, display_name, birth, rut, mail, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`

	err := s.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Surname, user.DisplayName, birthArg(user.Birth),
		user.RUT, user.Mail, user.PasswordHash,
	).Scan(&user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, pgErr.ConstraintName)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (s *PostgresStore) FindByRUT(ctx context.Context, rut string) (*User, error) {
	query :=
		`SELECT id, name, surname, display_name, birth, rut, mail, password_hash, created_at
		 FROM users WHERE rut = $1`

	return s.scanOne(s.db.QueryRowContext(ctx, query, rut))
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query :=
		`SELECT id, name, surname, display_name, birth, rut, mail, password_hash, created_at
		 FROM users WHERE id = $1`

	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) scanOne(row *sql.Row) (*User, error) {
	var (
		user  User
		birth sql.NullTime
	)

	err := row.Scan(&user.ID, &user.Name, &user.Surname, &user.DisplayName, &birth,
		&user.RUT, &user.Mail, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if birth.Valid {
		t := birth.Time
		user.Birth = &t
	}

	return &user, nil
}

func birthArg(birth *time.Time) any {
	if birth == nil {
		return nil
	}
	return *birth
}
