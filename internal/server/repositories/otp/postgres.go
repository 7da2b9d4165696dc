package otp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chatandpay/internal/common"
	"github.com/dmitrijs2005/chatandpay/internal/dbx"
	"github.com/dmitrijs2005/chatandpay/internal/server/models"
)

const selectChallengeForUpdate = `SELECT phone, code, attempts, expires_at, consumed_at, created_at FROM otp_challenges WHERE phone = $1 FOR UPDATE`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByPhoneForUpdate locks the phone's challenge row until the
// surrounding transaction ends.
func (r *PostgresRepository) FindByPhoneForUpdate(ctx context.Context, phone string) (*models.OtpChallenge, error) {
	return r.find(ctx, selectChallengeForUpdate, phone)
}

func (r *PostgresRepository) Upsert(ctx context.Context, c *models.OtpChallenge) error {
	query := `
		INSERT INTO otp_challenges (phone, code, attempts, expires_at, consumed_at, created_at)
		VALUES ($1, $2, 0, $3, NULL, now())
		ON CONFLICT (phone) DO UPDATE
		SET code = EXCLUDED.code, attempts = 0, expires_at = EXCLUDED.expires_at,
		    consumed_at = NULL, created_at = EXCLUDED.created_at
	`
	if _, err := r.db.ExecContext(ctx, query, c.Phone, c.Code, c.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	query := `
		UPDATE otp_challenges SET attempts = attempts + 1
		WHERE phone = $1
		RETURNING attempts
	`
	var attempts int
	if err := r.db.QueryRowContext(ctx, query, phone).Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return attempts, nil
}

func (r *PostgresRepository) Close(ctx context.Context, phone string, at time.Time) error {
	query := `
		UPDATE otp_challenges SET consumed_at = $2
		WHERE phone = $1
	`
	res, err := r.db.ExecContext(ctx, query, phone, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByPhone(ctx context.Context, phone string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM otp_challenges WHERE phone = $1`, phone); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) find(ctx context.Context, query string, phone string) (*models.OtpChallenge, error) {
	var (
		c        models.OtpChallenge
		consumed sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, phone).
		Scan(&c.Phone, &c.Code, &c.Attempts, &c.ExpiresAt, &consumed, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if consumed.Valid {
		c.ConsumedAt = &consumed.Time
	}
	return &c, nil
}
