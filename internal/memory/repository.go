package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// insertChunkSize keeps a single INSERT well under the 65535 bind parameter limit.
const insertChunkSize = 1000

// Store defines memory persistence operations.
type Store interface {
	InsertBatch(ctx context.Context, records []Record) error
	Nearest(ctx context.Context, query []float32, offset, limit int) ([]Record, error)
	Window(ctx context.Context, ts time.Time, before, after int) ([]Record, error)
}

// PostgresRepository implements Store using pgx + pgvector.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new memory repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// InsertBatch writes all records in one transaction. An empty batch is a no-op.
func (r *PostgresRepository) InsertBatch(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for start := 0; start < len(records); start += insertChunkSize {
			end := min(start+insertChunkSize, len(records))
			query, args := buildInsert(records[start:end])
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return fmt.Errorf("inserting rows %d-%d: %w", start, end, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("inserting embeddings batch: %w", err)
	}
	return nil
}

func buildInsert(records []Record) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO embeddings (text_segment, embedding, username, speaker) VALUES ")

	args := make([]any, 0, len(records)*4)
	for i, rec := range records {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 4
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, rec.Text, pgvector.NewVector(rec.Embedding), rec.Username, rec.Speaker)
	}
	return sb.String(), args
}

// Nearest ranks every row by L2 distance to query and returns [offset, offset+limit).
func (r *PostgresRepository) Nearest(ctx context.Context, query []float32, offset, limit int) ([]Record, error) {
	if limit == 0 {
		return []Record{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, text_segment, username, speaker, created_at
		 FROM embeddings
		 ORDER BY embedding <-> $1
		 LIMIT $2 OFFSET $3`,
		pgvector.NewVector(query), limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("searching nearest embeddings: %w", err)
	}
	return scanRecords(rows)
}

// Window returns up to after rows strictly later than ts in ascending order,
// followed by up to before rows at or earlier than ts, also in ascending order.
func (r *PostgresRepository) Window(ctx context.Context, ts time.Time, before, after int) ([]Record, error) {
	before, after = abs(before), abs(after)

	later, err := r.queryRecords(ctx,
		`SELECT id, text_segment, username, speaker, created_at
		 FROM embeddings
		 WHERE created_at > $1
		 ORDER BY created_at ASC
		 LIMIT $2`,
		ts, after,
	)
	if err != nil {
		return nil, fmt.Errorf("querying records after %s: %w", ts.Format(time.RFC3339), err)
	}

	earlier, err := r.queryRecords(ctx,
		`SELECT id, text_segment, username, speaker, created_at
		 FROM embeddings
		 WHERE created_at <= $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		ts, before,
	)
	if err != nil {
		return nil, fmt.Errorf("querying records before %s: %w", ts.Format(time.RFC3339), err)
	}
	slices.Reverse(earlier)

	return append(later, earlier...), nil
}

// Dimension returns the declared dimension of the embedding column.
func (r *PostgresRepository) Dimension(ctx context.Context) (int, error) {
	var typmod int32
	err := r.pool.QueryRow(ctx,
		`SELECT atttypmod FROM pg_attribute
		 WHERE attrelid = 'embeddings'::regclass AND attname = 'embedding'`,
	).Scan(&typmod)
	if err != nil {
		return 0, fmt.Errorf("reading embedding column dimension: %w", err)
	}
	if typmod <= 0 {
		return 0, fmt.Errorf("embedding column has no fixed dimension")
	}
	return int(typmod), nil
}

// EnsureDimension fails when the embedding column was created for a different
// dimension than want. Rows of mixed dimension can never be compared.
func (r *PostgresRepository) EnsureDimension(ctx context.Context, want int) error {
	got, err := r.Dimension(ctx)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("embedding column is vector(%d) but embedding dimension is configured as %d", got, want)
	}
	return nil
}

// Count returns the number of stored records.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) queryRecords(ctx context.Context, sql string, args ...any) ([]Record, error) {
	if limit, ok := args[len(args)-1].(int); ok && limit == 0 {
		return []Record{}, nil
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]Record, error) {
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Text, &rec.Username, &rec.Speaker, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
