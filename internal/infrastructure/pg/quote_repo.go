package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketsync-service/internal/application"
	"marketsync-service/internal/domain"
	"marketsync-service/internal/infrastructure/logx"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type QuoteRepo struct {
	db  *DB
	uow *UnitOfWork
}

var _ application.QuoteRepo = (*QuoteRepo)(nil)

func NewQuoteRepo(db *DB) *QuoteRepo { return &QuoteRepo{db: db, uow: &UnitOfWork{Pool: db.Pool}} }

const upsertQuoteSQL = `
        INSERT INTO market_quotes(symbol, exchange, short_name, currency, price, change, change_percent,
                                  high, low, open, prev_close, volume, last_updated, chart_data)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (symbol) DO UPDATE
          SET exchange=EXCLUDED.exchange, short_name=EXCLUDED.short_name, currency=EXCLUDED.currency,
              price=EXCLUDED.price, change=EXCLUDED.change, change_percent=EXCLUDED.change_percent,
              high=EXCLUDED.high, low=EXCLUDED.low, open=EXCLUDED.open, prev_close=EXCLUDED.prev_close,
              volume=EXCLUDED.volume, last_updated=EXCLUDED.last_updated, chart_data=EXCLUDED.chart_data`

// chartPoint is the JSONB shape of one chart sample.
type chartPoint struct {
	T time.Time `json:"t"`
	P float64   `json:"p"`
}

func encodeChart(pts []domain.ChartPoint) ([]byte, error) {
	if len(pts) == 0 {
		return nil, nil
	}
	rows := make([]chartPoint, len(pts))
	for i, p := range pts {
		rows[i] = chartPoint{T: p.Time.UTC(), P: p.Price}
	}
	return json.Marshal(rows)
}

func decodeChart(b []byte) ([]domain.ChartPoint, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var rows []chartPoint
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.ChartPoint, len(rows))
	for i, r := range rows {
		out[i] = domain.ChartPoint{Time: r.T, Price: r.P}
	}
	return out, nil
}

// UpsertMany replaces every given record in one transaction; either all
// rows land or none do.
func (r *QuoteRepo) UpsertMany(ctx context.Context, quotes []domain.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	log := logx.L().With(
		zap.String("repo", "market_quotes"),
		zap.String("operation", "UpsertMany"),
		zap.Int("records", len(quotes)),
	)
	log.Debug("sql.batch_start")
	err := r.uow.Do(ctx, func(ctx context.Context) error {
		batch := &pgx.Batch{}
		for _, q := range quotes {
			chart, err := encodeChart(q.ChartData)
			if err != nil {
				return fmt.Errorf("encode chart %s: %w", q.Symbol, err)
			}
			batch.Queue(upsertQuoteSQL,
				q.Symbol, string(q.Exchange), q.ShortName, q.Currency,
				q.Price, q.Change, q.ChangePercent, q.High, q.Low, q.Open, q.PrevClose,
				q.Volume, q.LastUpdated.UTC().Truncate(time.Microsecond), chart,
			)
		}
		br := r.db.conn(ctx).SendBatch(ctx, batch)
		for _, q := range quotes {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("upsert %s: %w", q.Symbol, err)
			}
		}
		return br.Close()
	})
	if err != nil {
		log.Error("sql.batch_failed", zap.Error(err))
		return err
	}
	log.Info("sql.batch_success")
	return nil
}

func (r *QuoteRepo) ListAll(ctx context.Context) ([]domain.Quote, error) {
	const q = `
        SELECT symbol, exchange, short_name, currency, price, change, change_percent,
               high, low, open, prev_close, volume, last_updated, chart_data
        FROM market_quotes ORDER BY exchange, symbol`
	log := logx.L().With(
		zap.String("repo", "market_quotes"),
		zap.String("operation", "ListAll"),
	)
	rows, err := r.db.conn(ctx).Query(ctx, q)
	if err != nil {
		log.Error("sql.query_failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []domain.Quote
	for rows.Next() {
		var (
			qt    domain.Quote
			ex    string
			chart []byte
		)
		if err := rows.Scan(&qt.Symbol, &ex, &qt.ShortName, &qt.Currency, &qt.Price, &qt.Change, &qt.ChangePercent,
			&qt.High, &qt.Low, &qt.Open, &qt.PrevClose, &qt.Volume, &qt.LastUpdated, &chart); err != nil {
			log.Error("sql.scan_failed", zap.Error(err))
			return nil, err
		}
		qt.Exchange = domain.Exchange(ex)
		qt.LastUpdated = qt.LastUpdated.UTC()
		if qt.ChartData, err = decodeChart(chart); err != nil {
			log.Warn("sql.chart_corrupt", zap.String("symbol", qt.Symbol), zap.Error(err))
		}
		out = append(out, qt)
	}
	if err := rows.Err(); err != nil {
		log.Error("sql.query_failed", zap.Error(err))
		return nil, err
	}
	log.Info("sql.query_success", zap.Int("rows", len(out)))
	return out, nil
}
