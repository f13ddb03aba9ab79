package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftsplit/liftsplit/internal/domain"
	"github.com/liftsplit/liftsplit/internal/repository"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }
func stringPtr(v string) *string { return &v }
func nilInt() *int { return nil }
func nilFloat() *float64 { return nil }
func nilString() *string { return nil }

func TestRepository_CreateUser(t *testing.T) {
	created := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantID    int64
		wantErr   error
	}{
		{
			name: "inserts and returns id",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("john", "john@x.com", []byte("hash"), created).
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
			},
			wantID: 7,
		},
		{
			name: "duplicate username",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: usernameConstraint})
			},
			wantErr: repository.ErrUsernameTaken,
		},
		{
			name: "duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: emailConstraint})
			},
			wantErr: repository.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setupMock(mock)

			user := &domain.User{Username: "john", Email: "john@x.com", PasswordHash: []byte("hash"), CreatedAt: created}
			err := New(mock).CreateUser(context.Background(), user)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, user.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestRepository_GetUserByUsername(t *testing.T) {
	created := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		errMsg    string
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"}).
					AddRow(int64(1), "john", "john@x.com", []byte("hash"), created)
				mock.ExpectQuery(`SELECT id, username, email, password_hash, created_at FROM users WHERE username = \$1`).
					WithArgs("john").
					WillReturnRows(rows)
			},
		},
		{
			name: "missing",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE username`).
					WithArgs("john").
					WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"}))
			},
			wantErr: repository.ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE username`).
					WithArgs("john").
					WillReturnError(errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setupMock(mock)

			user, err := New(mock).GetUserByUsername(context.Background(), "john")
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.NotErrorIs(t, err, repository.ErrNotFound)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, int64(1), user.ID)
				assert.Equal(t, "john@x.com", user.Email)
				assert.Equal(t, []byte("hash"), user.PasswordHash)
			}
			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestRepository_ListSplitsByUser(t *testing.T) {
	mock := newMock(t)
	created := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "user_id", "name", "description", "created_at"}).
		AddRow(int64(1), int64(3), "Push", stringPtr("chest day"), created).
		AddRow(int64(2), int64(3), "Pull", nilString(), created)
	mock.ExpectQuery(`FROM splits\s+WHERE user_id = \$1 AND name ILIKE \$2`).
		WithArgs(int64(3), `%pu\%%`, pgxmock.AnyArg(), 5).
		WillReturnRows(rows)

	splits, err := New(mock).ListSplitsByUser(context.Background(), 3, domain.ListOptions{Limit: 10, Offset: 5, Search: " pu% "})
	require.NoError(t, err)
	require.Len(t, splits, 2)
	assert.Equal(t, "Push", splits[0].Name)
	require.NotNil(t, splits[0].Description)
	assert.Equal(t, "chest day", *splits[0].Description)
	assert.Nil(t, splits[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SplitMutationsScopedToOwner(t *testing.T) {
	tests := []struct {
		name    string
		run     func(r *Repository) error
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "update owned split",
			run: func(r *Repository) error {
				return r.UpdateSplit(context.Background(), &domain.Split{ID: 1, UserID: 3, Name: "Legs"})
			},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE splits SET name = \$1, description = \$2 WHERE id = \$3 AND user_id = \$4`).
					WithArgs("Legs", nilString(), int64(1), int64(3)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "update foreign split",
			run: func(r *Repository) error {
				return r.UpdateSplit(context.Background(), &domain.Split{ID: 1, UserID: 4, Name: "Legs"})
			},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE splits`).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			wantErr: repository.ErrNotFound,
		},
		{
			name: "delete owned split",
			run: func(r *Repository) error {
				return r.DeleteSplitForUser(context.Background(), 3, 1)
			},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM splits WHERE id = \$1 AND user_id = \$2`).
					WithArgs(int64(1), int64(3)).
					WillReturnResult(pgxmock.NewResult("DELETE", 1))
			},
		},
		{
			name: "delete foreign split",
			run: func(r *Repository) error {
				return r.DeleteSplitForUser(context.Background(), 4, 1)
			},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM splits`).
					WithArgs(int64(1), int64(4)).
					WillReturnResult(pgxmock.NewResult("DELETE", 0))
			},
			wantErr: repository.ErrNotFound,
		},
		{
			name: "get foreign split",
			run: func(r *Repository) error {
				_, err := r.GetSplitForUser(context.Background(), 4, 1)
				return err
			},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM splits WHERE id = \$1 AND user_id = \$2`).
					WithArgs(int64(1), int64(4)).
					WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "description", "created_at"}))
			},
			wantErr: repository.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setup(mock)
			err := tt.run(New(mock))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_CreateWorkout(t *testing.T) {
	created := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	t.Run("inserts optional fields", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO workouts`).
			WithArgs(int64(1), "Bench", intPtr(4), intPtr(8), floatPtr(80.5), nilString(), created).
			WillReturnRows(pgxmock.NewRows([]string{"id", "weight"}).AddRow(int64(11), floatPtr(80.5)))

		w := &domain.Workout{SplitID: 1, Name: "Bench", Sets: intPtr(4), Reps: intPtr(8), Weight: floatPtr(80.5), CreatedAt: created}
		require.NoError(t, New(mock).CreateWorkout(context.Background(), w))
		assert.Equal(t, int64(11), w.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reads back the stored weight", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO workouts .* RETURNING id, weight`).
			WillReturnRows(pgxmock.NewRows([]string{"id", "weight"}).AddRow(int64(12), floatPtr(80.56)))

		w := &domain.Workout{SplitID: 1, Name: "Bench", Weight: floatPtr(80.555), CreatedAt: created}
		require.NoError(t, New(mock).CreateWorkout(context.Background(), w))
		require.NotNil(t, w.Weight)
		assert.Equal(t, 80.56, *w.Weight)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing split", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO workouts`).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})

		w := &domain.Workout{SplitID: 99, Name: "Bench", CreatedAt: created}
		require.ErrorIs(t, New(mock).CreateWorkout(context.Background(), w), repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_ListWorkoutsForUserJoinsOwnership(t *testing.T) {
	mock := newMock(t)
	created := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "split_id", "name", "sets", "reps", "weight", "notes", "created_at"}).
		AddRow(int64(1), int64(2), "Bench", intPtr(4), intPtr(8), floatPtr(80.5), nilString(), created).
		AddRow(int64(2), int64(2), "Dips", nilInt(), nilInt(), nilFloat(), stringPtr("bodyweight"), created)
	mock.ExpectQuery(`INNER JOIN splits s ON s.id = w.split_id\s+WHERE w.split_id = \$1 AND s.user_id = \$2`).
		WithArgs(int64(2), int64(3), "%%", pgxmock.AnyArg(), 0).
		WillReturnRows(rows)

	workouts, err := New(mock).ListWorkoutsForUser(context.Background(), 3, 2, domain.ListOptions{})
	require.NoError(t, err)
	require.Len(t, workouts, 2)
	assert.Equal(t, 80.5, *workouts[0].Weight)
	assert.Nil(t, workouts[1].Sets)
	assert.Equal(t, "bodyweight", *workouts[1].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_WorkoutMutationsScopedToOwner(t *testing.T) {
	t.Run("update foreign workout", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`UPDATE workouts w`).
			WillReturnRows(pgxmock.NewRows([]string{"weight"}))
		err := New(mock).UpdateWorkout(context.Background(), 4, &domain.Workout{ID: 1, SplitID: 2, Name: "Bench"})
		require.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update reads back the stored weight", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`UPDATE workouts w[\s\S]*RETURNING w.weight`).
			WithArgs("Bench", nilInt(), nilInt(), floatPtr(100.005), nilString(), int64(1), int64(2), int64(3)).
			WillReturnRows(pgxmock.NewRows([]string{"weight"}).AddRow(floatPtr(100.01)))
		w := &domain.Workout{ID: 1, SplitID: 2, Name: "Bench", Weight: floatPtr(100.005)}
		require.NoError(t, New(mock).UpdateWorkout(context.Background(), 3, w))
		require.NotNil(t, w.Weight)
		assert.Equal(t, 100.01, *w.Weight)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete owned workout", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`DELETE FROM workouts w\s+USING splits s`).
			WithArgs(int64(1), int64(2), int64(3)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		require.NoError(t, New(mock).DeleteWorkoutForUser(context.Background(), 3, 2, 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get foreign workout", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`WHERE w.id = \$1 AND w.split_id = \$2 AND s.user_id = \$3`).
			WithArgs(int64(1), int64(2), int64(4)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "split_id", "name", "sets", "reps", "weight", "notes", "created_at"}))
		_, err := New(mock).GetWorkoutForUser(context.Background(), 4, 2, 1)
		require.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_WithTx(t *testing.T) {
	t.Run("commits when the closure succeeds", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM splits`).
			WithArgs(int64(1), int64(3)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		err := New(mock).WithTx(context.Background(), func(store repository.Store) error {
			return store.DeleteSplitForUser(context.Background(), 3, 1)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the closure fails", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM splits`).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectRollback()

		err := New(mock).WithTx(context.Background(), func(store repository.Store) error {
			return store.DeleteSplitForUser(context.Background(), 3, 1)
		})
		require.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested calls reuse the open transaction", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		calls := 0
		err := New(mock).WithTx(context.Background(), func(store repository.Store) error {
			return store.(repository.Transactor).WithTx(context.Background(), func(repository.Store) error {
				calls++
				return nil
			})
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%%", likePattern("  "))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
	assert.Nil(t, limitArg(0))
	assert.Equal(t, 3, *limitArg(3))
}
