package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"google-auth-service/internal/db"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore keeps users in the users table created by
// db.RunUsersMigration. The LOWER(email) unique index decides races.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Record, error) {
	var (
		rec          Record
		id           uuid.UUID
		passwordHash sql.NullString
		googleID     sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, google_id, avatar_url, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(
		&id,
		&rec.Email,
		&rec.DisplayName,
		&passwordHash,
		&googleID,
		&rec.AvatarURL,
		&rec.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec.ID = id.String()
	rec.PasswordHash = nullable(passwordHash)
	rec.ProviderSubjectID = nullable(googleID)
	return &rec, nil
}

func (s *PostgresStore) Create(ctx context.Context, rec Record) (*Record, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
	)

	// Single statement: either the whole row lands or nothing does.
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, display_name, password_hash, google_id, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`,
		rec.Email,
		rec.DisplayName,
		rec.PasswordHash,
		rec.ProviderSubjectID,
		rec.AvatarURL,
	).Scan(&id, &createdAt)

	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}

	rec.ID = id.String()
	rec.CreatedAt = createdAt
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

var _ Store = (*PostgresStore)(nil)
