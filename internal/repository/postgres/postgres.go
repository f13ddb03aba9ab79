package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/liftsplit/liftsplit/internal/repository"
)

// DB is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is a DB that can open transactions.
type Pool interface {
	DB
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool Pool
	db   DB
	inTx bool
}

// New constructs a Repository.
func New(pool Pool) *Repository {
	return &Repository{pool: pool, db: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.Store      = (*Repository)(nil)
	_ repository.Transactor = (*Repository)(nil)
)

// WithTx runs fn against a repository bound to a single transaction. The
// transaction commits when fn returns nil and is rolled back otherwise.
// Calls made on a repository that is already transactional reuse it.
func (r *Repository) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if r.inTx {
		return fn(r)
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Repository{pool: r.pool, db: tx, inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// likePattern turns free text into an ILIKE substring pattern. An empty
// search matches every row.
func likePattern(search string) string {
	search = strings.TrimSpace(search)
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(search) + "%"
}

// limitArg maps a zero limit to NULL, which Postgres treats as LIMIT ALL.
func limitArg(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

func pgErrorCode(err error) (string, string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	return "", "", false
}

func isForeignKeyViolation(err error) bool {
	code, _, ok := pgErrorCode(err)
	return ok && code == pgerrcode.ForeignKeyViolation
}
