package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendora/marketplace-api/internal/domain/entity"
	"github.com/vendora/marketplace-api/internal/domain/repository"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `
	id, email, password_hash, role, status, profile, seller_extra,
	onboarding_step, onboarding_completed, email_verified, email_verification_token,
	password_reset_token, password_reset_expires, refresh_tokens, last_login,
	version, created_at, updated_at
`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	profile, sellerExtra, err := marshalDocs(u)
	if err != nil {
		return err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (
			id, email, password_hash, role, status, profile, seller_extra,
			onboarding_step, onboarding_completed, email_verified, email_verification_token,
			password_reset_token, password_reset_expires, refresh_tokens, last_login
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING version, created_at, updated_at
	`, u.ID, u.Email, u.PasswordHash, u.Role, u.Status, profile, sellerExtra,
		u.OnboardingStep, u.OnboardingCompleted, u.EmailVerified, u.EmailVerificationToken,
		u.PasswordResetToken, u.PasswordResetExpires, tokensArg(u.RefreshTokens), u.LastLogin)

	if err := row.Scan(&u.Version, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE lower(email) = lower($1)
	`, email)
	return scanUser(row)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	profile, sellerExtra, err := marshalDocs(u)
	if err != nil {
		return err
	}
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, role = $3, status = $4,
			profile = $5, seller_extra = $6,
			onboarding_step = $7, onboarding_completed = $8,
			email_verified = $9, email_verification_token = $10,
			password_reset_token = $11, password_reset_expires = $12,
			refresh_tokens = $13, last_login = $14,
			version = version + 1, updated_at = $15
		WHERE id = $16 AND version = $17
	`, u.Email, u.PasswordHash, u.Role, u.Status,
		profile, sellerExtra,
		u.OnboardingStep, u.OnboardingCompleted,
		u.EmailVerified, u.EmailVerificationToken,
		u.PasswordResetToken, u.PasswordResetExpires,
		tokensArg(u.RefreshTokens), u.LastLogin,
		u.UpdatedAt, u.ID, u.Version)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		// Distinguish a stale version from a deleted row.
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, u.ID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return repository.ErrVersionConflict
		}
		return repository.ErrNotFound
	}

	u.Version++
	return nil
}

// tokensArg keeps the registry a NOT NULL array; pgx encodes nil as NULL.
func tokensArg(tokens []string) []string {
	if tokens == nil {
		return []string{}
	}
	return tokens
}

func marshalDocs(u *entity.User) ([]byte, []byte, error) {
	profile, err := json.Marshal(u.Profile)
	if err != nil {
		return nil, nil, err
	}
	sellerExtra, err := json.Marshal(u.SellerExtra)
	if err != nil {
		return nil, nil, err
	}
	return profile, sellerExtra, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var profile, sellerExtra []byte

	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Status,
		&profile, &sellerExtra,
		&u.OnboardingStep, &u.OnboardingCompleted, &u.EmailVerified, &u.EmailVerificationToken,
		&u.PasswordResetToken, &u.PasswordResetExpires, &u.RefreshTokens, &u.LastLogin,
		&u.Version, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(profile, &u.Profile); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sellerExtra, &u.SellerExtra); err != nil {
		return nil, err
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
