package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketdata/internal/provider"
)

// SecurityPrice is the persisted form of a provider.PricePoint.
type SecurityPrice struct {
	Symbol    string          `gorm:"primaryKey;size:32"`
	Exchange  string          `gorm:"primaryKey;size:8"`
	Date      time.Time       `gorm:"primaryKey;type:date"`
	Price     decimal.Decimal `gorm:"type:numeric(20,8)"`
	Currency  string          `gorm:"size:3"`
	UpdatedAt time.Time
}

// CurrencyRate is the persisted form of a provider.ExchangeRate.
type CurrencyRate struct {
	FromCurrency string          `gorm:"primaryKey;size:3"`
	ToCurrency   string          `gorm:"primaryKey;size:3"`
	Date         time.Time       `gorm:"primaryKey;type:date"`
	Rate         decimal.Decimal `gorm:"type:numeric(20,8)"`
	UpdatedAt    time.Time
}

// DB implements PriceStore and RateStore on top of GORM.
type DB struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the two tables.
func Open(dsn string) (*DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&SecurityPrice{}, &CurrencyRate{}); err != nil {
		return nil, err
	}
	return &DB{db: db}, nil
}

// New wraps an existing GORM handle; used by tests and callers that manage
// their own connection.
func New(db *gorm.DB) *DB { return &DB{db: db} }

func (s *DB) UpsertPrice(ctx context.Context, p provider.PricePoint) error {
	model := SecurityPrice{
		Symbol:   p.Symbol,
		Exchange: p.Exchange,
		Date:     p.Date,
		Price:    p.Price,
		Currency: p.Currency,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "exchange"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "currency", "updated_at"}),
	}).Create(&model).Error
}

func (s *DB) UpsertRate(ctx context.Context, r provider.ExchangeRate) error {
	model := CurrencyRate{
		FromCurrency: r.From,
		ToCurrency:   r.To,
		Date:         r.Date,
		Rate:         r.Rate,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_currency"}, {Name: "to_currency"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
	}).Create(&model).Error
}
