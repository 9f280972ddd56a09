package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/socialhub/internal/domain/user"
	"github.com/geocoder89/socialhub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

// Create inserts a user. The id is assigned here; the unique email constraint
// is the source of truth for duplicates.
func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	u.ID = uuid.NewString()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	err := r.prom.ObserveDB(ctx, "users.create", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, password_hash, bio, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			u.ID, u.Name, u.Email, u.PasswordHash, u.Bio, u.CreatedAt,
		)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) && isConstraint(err, "users_email_uniq") {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, pkgerrors.Wrap(err, "users.create")
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", `WHERE email = $1`, email)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", `WHERE id = $1`, id)
}

func (r *UsersRepo) getOne(ctx context.Context, op, where string, arg string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB(ctx, op, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, email, password_hash, bio, created_at FROM users `+where,
			arg,
		).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Bio, &u.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, pkgerrors.Wrap(err, op)
	}
	return u, nil
}

// GetByIDs resolves many references in one round trip. Ids that do not exist
// are simply absent from the result. Password hashes are not selected.
func (r *UsersRepo) GetByIDs(ctx context.Context, ids []string) (map[string]user.User, error) {
	out := make(map[string]user.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	err := r.prom.ObserveDB(ctx, "users.get_by_ids", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, name, email, bio, created_at FROM users WHERE id = ANY($1::text[])`,
			ids,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var u user.User
			if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Bio, &u.CreatedAt); err != nil {
				return err
			}
			out[u.ID] = u
		}
		return rows.Err()
	})

	if err != nil {
		return nil, pkgerrors.Wrap(err, "users.get_by_ids")
	}
	return out, nil
}
