package types

import "time"

// Column is a bank rate column name
type Column string

const (
	ColumnBankName   Column = "bank_name"
	ColumnBankEN     Column = "bank_en"
	ColumnLink       Column = "link"
	ColumnUSDBuy     Column = "usd_buy"
	ColumnUSDSell    Column = "usd_sell"
	ColumnEURBuy     Column = "eur_buy"
	ColumnEURSell    Column = "eur_sell"
	ColumnUpdateTime Column = "update_time"
)

func (c Column) String() string {
	return string(c)
}

// IsQuote reports whether the column holds a numeric quote value
func (c Column) IsQuote() bool {
	switch c {
	case ColumnUSDBuy, ColumnUSDSell, ColumnEURBuy, ColumnEURSell:
		return true
	default:
		return false
	}
}

// RateColumns is a column -> value update set
type RateColumns map[Column]any

// Rate is a single bank's quote sheet, as scraped from the listing site
type Rate struct {
	BankName   string  `json:"bank_name"`
	BankEN     string  `json:"bank_en"`
	Link       string  `json:"link"`
	USDBuy     float64 `json:"usd_buy"`
	USDSell    float64 `json:"usd_sell"`
	EURBuy     float64 `json:"eur_buy"`
	EURSell    float64 `json:"eur_sell"`
	UpdateTime string  `json:"update_time"`
}

// UpdateColumns returns the full update set for the rate,
// excluding the bank_en match key
func (r *Rate) UpdateColumns() RateColumns {
	return RateColumns{
		ColumnBankName:   r.BankName,
		ColumnLink:       r.Link,
		ColumnUSDBuy:     r.USDBuy,
		ColumnUSDSell:    r.USDSell,
		ColumnEURBuy:     r.EURBuy,
		ColumnEURSell:    r.EURSell,
		ColumnUpdateTime: r.UpdateTime,
	}
}

// Quote returns the value of the given quote column
func (r *Rate) Quote(c Column) (float64, bool) {
	switch c {
	case ColumnUSDBuy:
		return r.USDBuy, true
	case ColumnUSDSell:
		return r.USDSell, true
	case ColumnEURBuy:
		return r.EURBuy, true
	case ColumnEURSell:
		return r.EURSell, true
	default:
		return 0, false
	}
}

// Apply sets the given column values on the rate.
// The bank_en key, unknown columns and mistyped values are ignored
func (r *Rate) Apply(columns RateColumns) {
	for c, v := range columns {
		switch c {
		case ColumnBankName:
			if s, ok := v.(string); ok {
				r.BankName = s
			}
		case ColumnLink:
			if s, ok := v.(string); ok {
				r.Link = s
			}
		case ColumnUSDBuy:
			if f, ok := v.(float64); ok {
				r.USDBuy = f
			}
		case ColumnUSDSell:
			if f, ok := v.(float64); ok {
				r.USDSell = f
			}
		case ColumnEURBuy:
			if f, ok := v.(float64); ok {
				r.EURBuy = f
			}
		case ColumnEURSell:
			if f, ok := v.(float64); ok {
				r.EURSell = f
			}
		case ColumnUpdateTime:
			if s, ok := v.(string); ok {
				r.UpdateTime = s
			}
		}
	}
}

// StoredRate is a persisted bank rate row
type StoredRate struct {
	Rate

	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
