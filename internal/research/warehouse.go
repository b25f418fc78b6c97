package research

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

// Warehouse serves the structured research categories from Postgres. Rows are
// scanned generically into maps so schema additions flow through to prompts
// without code changes.
type Warehouse struct {
	db     *sql.DB
	log    *queryLog
	logger *log.Logger
}

// OpenWarehouse connects to the research warehouse and verifies the connection.
func OpenWarehouse(ctx context.Context, dsn string) (*Warehouse, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}
	return &Warehouse{
		db:     db,
		log:    &queryLog{},
		logger: log.New(log.Writer(), "[WAREHOUSE] ", log.LstdFlags),
	}, nil
}

func (w *Warehouse) Close() error { return w.db.Close() }

func (w *Warehouse) Metrics(ctx context.Context, ticker string) (map[string]interface{}, error) {
	return w.queryOne(ctx, "metrics",
		`SELECT * FROM stock_metrics WHERE ticker = $1 ORDER BY as_of DESC LIMIT 1`, ticker)
}

func (w *Warehouse) EarningsHistory(ctx context.Context, ticker string, limit int) ([]map[string]interface{}, error) {
	return w.queryMany(ctx, "earnings_history",
		`SELECT * FROM earnings_history WHERE ticker = $1 ORDER BY report_date DESC LIMIT $2`, ticker, limit)
}

func (w *Warehouse) TechnicalIndicators(ctx context.Context, ticker string) (map[string]interface{}, error) {
	return w.queryOne(ctx, "technical_indicators",
		`SELECT * FROM technical_indicators WHERE ticker = $1 ORDER BY as_of DESC LIMIT 1`, ticker)
}

func (w *Warehouse) Sentiment(ctx context.Context, ticker string) (map[string]interface{}, error) {
	return w.queryOne(ctx, "sentiment",
		`SELECT * FROM sentiment_summary WHERE ticker = $1 ORDER BY as_of DESC LIMIT 1`, ticker)
}

func (w *Warehouse) InsiderActivity(ctx context.Context, ticker string, limit int) ([]map[string]interface{}, error) {
	return w.queryMany(ctx, "insider_activity",
		`SELECT * FROM insider_transactions WHERE ticker = $1 ORDER BY transaction_date DESC LIMIT $2`, ticker, limit)
}

func (w *Warehouse) InstitutionalHoldings(ctx context.Context, ticker string, limit int) ([]map[string]interface{}, error) {
	return w.queryMany(ctx, "institutional_holdings",
		`SELECT * FROM institutional_holdings WHERE ticker = $1 ORDER BY position_value DESC LIMIT $2`, ticker, limit)
}

func (w *Warehouse) queryOne(ctx context.Context, category, q string, args ...interface{}) (map[string]interface{}, error) {
	rows, err := w.queryMany(ctx, category, q, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no %s rows for %v", category, args[0])
	}
	return rows[0], nil
}

func (w *Warehouse) queryMany(ctx context.Context, category, q string, args ...interface{}) ([]map[string]interface{}, error) {
	w.log.add("sql", q, map[string]interface{}{"category": category, "args": args})
	rows, err := w.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", category, err)
	}
	defer rows.Close()
	out, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", category, err)
	}
	return out, nil
}

// scanRows reads every row into a column→value map, decoding byte slices to
// strings so numerics and text render cleanly in prompts.
func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]interface{}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		m := make(map[string]interface{}, len(cols))
		for i, c := range cols {
			switch v := vals[i].(type) {
			case []byte:
				m[c] = string(v)
			default:
				m[c] = v
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
