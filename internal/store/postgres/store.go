// Package postgres is a catalog store backed by PostgreSQL through pgx.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/promoavail/internal/catalog"
	"github.com/MrSnakeDoc/promoavail/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds database connection configuration.
type Config struct {
	URL             string
	MaxConnections  int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Store reads and writes the products and synonyms tables.
type Store struct {
	pool *pgxpool.Pool
}

var _ catalog.Store = (*Store)(nil)

// Open creates the pool, pings it and makes sure the schema exists.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	if poolConfig.MaxConns == 0 {
		poolConfig.MaxConns = 10
	}
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	if poolConfig.MaxConnLifetime == 0 {
		poolConfig.MaxConnLifetime = time.Hour
	}
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	if poolConfig.MaxConnIdleTime == 0 {
		poolConfig.MaxConnIdleTime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the catalog tables when they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return nil
}

// ListProducts returns products in insertion order.
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}

// ListSynonyms returns synonyms in insertion order.
func (s *Store) ListSynonyms(ctx context.Context) ([]domain.Synonym, error) {
	rows, err := s.pool.Query(ctx, `SELECT customer_says, we_call_it, notes FROM synonyms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query synonyms: %w", err)
	}

	synonyms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Synonym, error) {
		var syn domain.Synonym
		err := row.Scan(&syn.CustomerSays, &syn.WeCallIt, &syn.Notes)
		return syn, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan synonyms: %w", err)
	}
	return synonyms, nil
}

// AppendProducts inserts all products in one transaction.
func (s *Store) AppendProducts(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(`INSERT INTO products (`+productColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`, productArgs(p)...)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range products {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to insert product %q: %w", products[i].Name, err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateProduct overwrites the row whose name matches case-insensitively.
func (s *Store) UpdateProduct(ctx context.Context, p domain.Product) error {
	args := productArgs(p)
	tag, err := s.pool.Exec(ctx, `
		UPDATE products SET
			name = $1, category = $2, url = $3, other_names = $4, website_colors = $5,
			local_supplier = $6, local_moq = $7, local_lead_time = $8, local_colors = $9,
			china_available = $10, china_moq = $11, china_air = $12, china_sea = $13, china_colors = $14,
			notes = $15, last_updated = $16
		WHERE lower(name) = lower($1)`, args...)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", catalog.ErrProductNotFound, p.Name)
	}
	return nil
}

// AddSynonyms inserts synonym rows. Used by seeding tools.
func (s *Store) AddSynonyms(ctx context.Context, synonyms []domain.Synonym) error {
	batch := &pgx.Batch{}
	for _, syn := range synonyms {
		batch.Queue(`INSERT INTO synonyms (customer_says, we_call_it, notes) VALUES ($1, $2, $3)`,
			syn.CustomerSays, syn.WeCallIt, syn.Notes)
	}
	return s.pool.SendBatch(ctx, batch).Close()
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

const productColumns = `name, category, url, other_names, website_colors,
	local_supplier, local_moq, local_lead_time, local_colors,
	china_available, china_moq, china_air, china_sea, china_colors,
	notes, last_updated`

func productArgs(p domain.Product) []any {
	var lastUpdated *time.Time
	if !p.LastUpdated.IsZero() {
		lastUpdated = &p.LastUpdated
	}
	return []any{
		p.Name, p.Category, p.URL, p.OtherNames, nonNil(p.WebsiteColors),
		p.Sourcing.Local.Supplier, p.Sourcing.Local.MOQ, p.Sourcing.Local.LeadTime, nonNil(p.Sourcing.Local.Colors),
		p.Sourcing.China.Available, p.Sourcing.China.MOQ, p.Sourcing.China.Air, p.Sourcing.China.Sea, p.Sourcing.China.Colors,
		p.Notes, lastUpdated,
	}
}

func scanProduct(row pgx.CollectableRow) (domain.Product, error) {
	var (
		p           domain.Product
		lastUpdated *time.Time
	)
	err := row.Scan(
		&p.Name, &p.Category, &p.URL, &p.OtherNames, &p.WebsiteColors,
		&p.Sourcing.Local.Supplier, &p.Sourcing.Local.MOQ, &p.Sourcing.Local.LeadTime, &p.Sourcing.Local.Colors,
		&p.Sourcing.China.Available, &p.Sourcing.China.MOQ, &p.Sourcing.China.Air, &p.Sourcing.China.Sea, &p.Sourcing.China.Colors,
		&p.Notes, &lastUpdated,
	)
	if lastUpdated != nil {
		p.LastUpdated = *lastUpdated
	}
	return p, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
