package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/liftsplit/liftsplit/internal/domain"
	"github.com/liftsplit/liftsplit/internal/repository"
)

const splitColumns = `id, user_id, name, description, created_at`

// CreateSplit inserts a split owned by split.UserID.
func (r *Repository) CreateSplit(ctx context.Context, split *domain.Split) error {
	const query = `INSERT INTO splits (user_id, name, description, created_at)
		VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRow(ctx, query, split.UserID, split.Name, split.Description, split.CreatedAt).Scan(&split.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return oops.Code("SPLIT_OWNER_MISSING").With("user_id", split.UserID).Wrap(repository.ErrNotFound)
		}
		return oops.Code("SPLIT_CREATE_FAILED").With("user_id", split.UserID).Wrap(err)
	}
	return nil
}

// ListSplitsByUser returns the user's splits ordered by id.
func (r *Repository) ListSplitsByUser(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.Split, error) {
	const query = `SELECT ` + splitColumns + `
		FROM splits
		WHERE user_id = $1 AND name ILIKE $2
		ORDER BY id
		LIMIT $3 OFFSET $4`
	rows, err := r.db.Query(ctx, query, userID, likePattern(opts.Search), limitArg(opts.Limit), opts.Offset)
	if err != nil {
		return nil, oops.Code("SPLIT_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	defer rows.Close()

	splits := make([]domain.Split, 0)
	for rows.Next() {
		var s domain.Split
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.CreatedAt); err != nil {
			return nil, oops.Code("SPLIT_LIST_FAILED").With("user_id", userID).Wrap(err)
		}
		splits = append(splits, s)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SPLIT_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	return splits, nil
}

// GetSplitForUser fetches a split only when userID owns it.
func (r *Repository) GetSplitForUser(ctx context.Context, userID, splitID int64) (*domain.Split, error) {
	const query = `SELECT ` + splitColumns + ` FROM splits WHERE id = $1 AND user_id = $2`
	var s domain.Split
	err := r.db.QueryRow(ctx, query, splitID, userID).Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("SPLIT_NOT_FOUND").With("split_id", splitID).With("user_id", userID).Wrap(repository.ErrNotFound)
		}
		return nil, oops.Code("SPLIT_GET_FAILED").With("split_id", splitID).Wrap(err)
	}
	return &s, nil
}

// UpdateSplit writes name and description of a split owned by split.UserID.
func (r *Repository) UpdateSplit(ctx context.Context, split *domain.Split) error {
	const query = `UPDATE splits SET name = $1, description = $2 WHERE id = $3 AND user_id = $4`
	tag, err := r.db.Exec(ctx, query, split.Name, split.Description, split.ID, split.UserID)
	if err != nil {
		return oops.Code("SPLIT_UPDATE_FAILED").With("split_id", split.ID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("SPLIT_NOT_FOUND").With("split_id", split.ID).With("user_id", split.UserID).Wrap(repository.ErrNotFound)
	}
	return nil
}

// DeleteSplitForUser removes a split and, through ON DELETE CASCADE, its workouts.
func (r *Repository) DeleteSplitForUser(ctx context.Context, userID, splitID int64) error {
	const query = `DELETE FROM splits WHERE id = $1 AND user_id = $2`
	tag, err := r.db.Exec(ctx, query, splitID, userID)
	if err != nil {
		return oops.Code("SPLIT_DELETE_FAILED").With("split_id", splitID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("SPLIT_NOT_FOUND").With("split_id", splitID).With("user_id", userID).Wrap(repository.ErrNotFound)
	}
	return nil
}
