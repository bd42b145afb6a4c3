package bench

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rushteam/predbench/core"
)

const createResultsTable = `
CREATE TABLE IF NOT EXISTS benchmark_results (
    id INTEGER PRIMARY KEY,
    run_id VARCHAR(64) NOT NULL,
    name VARCHAR(128) NOT NULL,
    iterations INTEGER,
    mean_ns INTEGER,
    median_ns INTEGER,
    p95_ns INTEGER,
    p99_ns INTEGER,
    min_ns INTEGER,
    max_ns INTEGER,
    stddev_ns INTEGER,
    allocs_per_op REAL,
    bytes_per_op REAL,
    started_at DATETIME,
    UNIQUE(run_id, name)
);`

// SQLiteSink 把结果写入 SQLite，便于跨运行对比。
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite 打开（或创建）数据库并建表。
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, core.WrapError(core.ModuleBench, core.ErrorCodeUnavailable, err, "sqlite open %s", path)
	}
	if _, err := db.Exec(createResultsTable); err != nil {
		_ = db.Close()
		return nil, core.WrapError(core.ModuleBench, core.ErrorCodeUnavailable, err, "sqlite init %s", path)
	}
	return &SQLiteSink{db: db}, nil
}

// Save 在一个事务中写入一次运行的全部结果；同一 run_id 下同名结果会被覆盖。
func (s *SQLiteSink) Save(ctx context.Context, runID string, results []Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO benchmark_results
    (run_id, name, iterations, mean_ns, median_ns, p95_ns, p99_ns, min_ns, max_ns, stddev_ns, allocs_per_op, bytes_per_op, started_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range results {
		_, err := stmt.ExecContext(ctx, runID, r.Name, r.Iterations,
			int64(r.Mean), int64(r.Median), int64(r.P95), int64(r.P99),
			int64(r.Min), int64(r.Max), int64(r.StdDev),
			r.AllocsPerOp, r.BytesPerOp, r.StartedAt.UTC())
		if err != nil {
			_ = tx.Rollback()
			return core.WrapError(core.ModuleBench, core.ErrorCodeInternalError, err, "sqlite save %s", r.Name)
		}
	}
	return tx.Commit()
}

// History 按时间顺序返回某个基准的历史均值（纳秒）。
func (s *SQLiteSink) History(ctx context.Context, name string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT mean_ns FROM benchmark_results WHERE name = ? ORDER BY started_at, id`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
