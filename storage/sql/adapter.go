package sql

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sig-0/bankrates/storage"
	"github.com/sig-0/bankrates/storage/types"
)

var (
	errInvalidColumn      = errors.New("column is not a quote column")
	errColumnNotUpdatable = errors.New("column is not updatable")
)

// DB is the pgx query surface shared by *pgx.Conn and *pgxpool.Pool
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

const rateColumns = "id, bank_name, bank_en, link, " +
	"usd_buy, usd_sell, eur_buy, eur_sell, update_time, created_at, updated_at"

// updatableColumns are the columns the update queries accept.
// The bank ID is the update key, and is never updated itself
var updatableColumns = map[types.Column]struct{}{
	types.ColumnBankName:   {},
	types.ColumnLink:       {},
	types.ColumnUSDBuy:     {},
	types.ColumnUSDSell:    {},
	types.ColumnEURBuy:     {},
	types.ColumnEURSell:    {},
	types.ColumnUpdateTime: {},
}

type Storage struct {
	db DB
}

func NewStorage(db DB) *Storage {
	return &Storage{
		db: db,
	}
}

func (s *Storage) InsertRates(ctx context.Context, rates []*types.Rate) error {
	const q = `
		INSERT INTO bank_rates (bank_name, bank_en, link, usd_buy, usd_sell, eur_buy, eur_sell, update_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (bank_en) DO NOTHING
	`

	for _, r := range rates {
		_, err := s.db.Exec(
			ctx,
			q,
			r.BankName,
			r.BankEN,
			r.Link,
			floatToNumeric(r.USDBuy),
			floatToNumeric(r.USDSell),
			floatToNumeric(r.EURBuy),
			floatToNumeric(r.EURSell),
			r.UpdateTime,
		)
		if err != nil {
			return fmt.Errorf("unable to insert rate for %s: %w", r.BankEN, err)
		}
	}

	return nil
}

func (s *Storage) AllRates(ctx context.Context) ([]*types.StoredRate, error) {
	q := fmt.Sprintf("SELECT %s FROM bank_rates ORDER BY id", rateColumns)

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch rates: %w", err)
	}
	defer rows.Close()

	return scanStoredRates(rows)
}

func (s *Storage) RateByBank(ctx context.Context, bankEN string) (*types.StoredRate, error) {
	q := fmt.Sprintf("SELECT %s FROM bank_rates WHERE bank_en = $1", rateColumns)

	rate, err := scanStoredRate(s.db.QueryRow(ctx, q, bankEN))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // valid case
		}

		return nil, fmt.Errorf("unable to fetch rate: %w", err)
	}

	return rate, nil
}

func (s *Storage) QuoteValues(ctx context.Context, column types.Column) ([]float64, error) {
	if !column.IsQuote() {
		return nil, fmt.Errorf("%w: %s", errInvalidColumn, column)
	}

	q := fmt.Sprintf("SELECT %s FROM bank_rates ORDER BY %s", column, column)

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch quote values: %w", err)
	}
	defer rows.Close()

	var out []float64

	for rows.Next() {
		var value pgtype.Numeric

		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("unable to scan quote value: %w", err)
		}

		out = append(out, numericToFloat(value))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read quote values: %w", err)
	}

	return out, nil
}

func (s *Storage) RatesInRange(
	ctx context.Context,
	column types.Column,
	min, max float64,
) ([]*types.StoredRate, error) {
	if !column.IsQuote() {
		return nil, fmt.Errorf("%w: %s", errInvalidColumn, column)
	}

	q := fmt.Sprintf(
		"SELECT %s FROM bank_rates WHERE %s >= $1 AND %s <= $2 ORDER BY id",
		rateColumns,
		column,
		column,
	)

	rows, err := s.db.Query(ctx, q, floatToNumeric(min), floatToNumeric(max))
	if err != nil {
		return nil, fmt.Errorf("unable to fetch rates: %w", err)
	}
	defer rows.Close()

	return scanStoredRates(rows)
}

func (s *Storage) UpdateRates(ctx context.Context, fn func(tx storage.RateTx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("unable to begin transaction: %w", err)
	}

	defer func() {
		// Rollback after a successful commit is a no-op
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&rateTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("unable to commit rate updates: %w", err)
	}

	return nil
}

type rateTx struct {
	tx pgx.Tx
}

func (t *rateTx) UpdateRate(ctx context.Context, bankEN string, columns types.RateColumns) (int64, error) {
	if len(columns) == 0 {
		return 0, nil
	}

	cols := make([]types.Column, 0, len(columns))
	for col := range columns {
		cols = append(cols, col)
	}

	// Deterministic query text
	sort.Slice(cols, func(i, j int) bool {
		return cols[i] < cols[j]
	})

	assignments := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)

	for _, col := range cols {
		if _, ok := updatableColumns[col]; !ok {
			return 0, fmt.Errorf("%w: %s", errColumnNotUpdatable, col)
		}

		args = append(args, columnArg(col, columns[col]))
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	assignments = append(assignments, "updated_at = now()")

	q := fmt.Sprintf(
		"UPDATE bank_rates SET %s WHERE bank_en = $%d",
		strings.Join(assignments, ", "),
		len(args)+1,
	)
	args = append(args, bankEN)

	tag, err := t.tx.Exec(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("unable to update rate: %w", err)
	}

	return tag.RowsAffected(), nil
}

// columnArg converts the column value to its postgres form
func columnArg(column types.Column, value any) any {
	f, ok := value.(float64)
	if column.IsQuote() && ok {
		return floatToNumeric(f)
	}

	return value
}

func scanStoredRates(rows pgx.Rows) ([]*types.StoredRate, error) {
	var out []*types.StoredRate

	for rows.Next() {
		rate, err := scanStoredRate(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan rate: %w", err)
		}

		out = append(out, rate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read rates: %w", err)
	}

	return out, nil
}

func scanStoredRate(row pgx.Row) (*types.StoredRate, error) {
	var (
		rate types.StoredRate

		usdBuy, usdSell, eurBuy, eurSell pgtype.Numeric
		createdAt, updatedAt             pgtype.Timestamptz
	)

	err := row.Scan(
		&rate.ID,
		&rate.BankName,
		&rate.BankEN,
		&rate.Link,
		&usdBuy,
		&usdSell,
		&eurBuy,
		&eurSell,
		&rate.UpdateTime,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rate.USDBuy = numericToFloat(usdBuy)
	rate.USDSell = numericToFloat(usdSell)
	rate.EURBuy = numericToFloat(eurBuy)
	rate.EURSell = numericToFloat(eurSell)
	rate.CreatedAt = timestampzToTime(createdAt)
	rate.UpdatedAt = timestampzToTime(updatedAt)

	return &rate, nil
}

// floatToNumeric converts the float value to postgres numeric
func floatToNumeric(value float64) pgtype.Numeric {
	// round to 4dp and store as integer with exponent -4
	i := int64(math.Round(value * 1e4))

	return pgtype.Numeric{
		Int:   big.NewInt(i),
		Exp:   -4,
		Valid: true,
	}
}

// numericToFloat converts the postgres value to float
func numericToFloat(value pgtype.Numeric) float64 {
	if !value.Valid || value.Int == nil {
		return 0
	}

	f, _ := new(big.Rat).SetInt(value.Int).Float64()

	if value.Exp > 0 {
		f *= math.Pow10(int(value.Exp))
	} else if value.Exp < 0 {
		f /= math.Pow10(int(-value.Exp))
	}

	return f
}

// timestampzToTime converts the postgres timestamp value to time
func timestampzToTime(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}

	return ts.Time
}
