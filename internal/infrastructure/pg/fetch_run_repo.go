package pg

import (
	"context"

	"marketsync-service/internal/application"
	"marketsync-service/internal/domain"
	"marketsync-service/internal/infrastructure/logx"

	"go.uber.org/zap"
)

// FetchRunRepo keeps the per-cycle fetch log in sync_runs.
type FetchRunRepo struct{ db *DB }

var _ application.FetchRunRepo = (*FetchRunRepo)(nil)

func NewFetchRunRepo(db *DB) *FetchRunRepo { return &FetchRunRepo{db: db} }

func (r *FetchRunRepo) Record(ctx context.Context, run domain.FetchRun) error {
	const ins = `
        INSERT INTO sync_runs(id, exchange, status, records, error, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO NOTHING`
	log := logx.L().With(
		zap.String("repo", "sync_runs"),
		zap.String("operation", "Record"),
		zap.String("id", run.ID),
		zap.String("exchange", string(run.Exchange)),
		zap.String("status", string(run.Status)),
	)
	if run.Error != nil {
		log = log.With(zap.String("error", *run.Error))
	}
	tag, err := r.db.conn(ctx).Exec(ctx, ins, run.ID, string(run.Exchange), string(run.Status), run.Records,
		run.Error, run.StartedAt.UTC(), run.FinishedAt.UTC())
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return err
	}
	log.Debug("sql.exec_success", zap.Int64("rows_affected", tag.RowsAffected()))
	return nil
}

// Recent returns the newest runs of one exchange, newest first.
func (r *FetchRunRepo) Recent(ctx context.Context, ex domain.Exchange, limit int) ([]domain.FetchRun, error) {
	const q = `
        SELECT id::text, exchange, status, records, error, started_at, finished_at
        FROM sync_runs WHERE exchange=$1
        ORDER BY started_at DESC LIMIT $2`
	rows, err := r.db.conn(ctx).Query(ctx, q, string(ex), limit)
	if err != nil {
		logx.L().Error("sql.query_failed", zap.String("repo", "sync_runs"), zap.Error(err))
		return nil, err
	}
	defer rows.Close()
	var out []domain.FetchRun
	for rows.Next() {
		var (
			run      domain.FetchRun
			exchange string
			status   string
		)
		if err := rows.Scan(&run.ID, &exchange, &status, &run.Records, &run.Error, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		run.Exchange, run.Status = domain.Exchange(exchange), domain.FetchStatus(status)
		out = append(out, run)
	}
	return out, rows.Err()
}
