package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/campaignstack/ai-gateway/internal/shared/models"
)

var (
	// ErrVendorConfigNotFound is returned when no row exists for a
	// (tenant, vendor) pair.
	ErrVendorConfigNotFound = errors.New("vendor config not found")

	// ErrFallbackPolicyNotFound is returned when no policy exists for a
	// (tenant, module) pair.
	ErrFallbackPolicyNotFound = errors.New("fallback policy not found")
)

type DB struct {
	conn *sql.DB
}

// New creates a new database connection pool.
func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return &DB{conn: conn}, nil
}

// NewFromConn wraps an existing *sql.DB. Used by tests.
func NewFromConn(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the underlying connection for collaborators that share the
// pool, such as the usage logger.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// GetVendorConfig loads the credential reference and default model for a
// (tenant, vendor) pair. The gateway never writes these rows.
func (db *DB) GetVendorConfig(ctx context.Context, tenantID, vendor string) (*models.VendorConfig, error) {
	query := `
		SELECT id, tenant_id, vendor, api_key, base_url, model, active, created_at, updated_at
		FROM vendor_configs
		WHERE tenant_id = $1 AND vendor = $2
	`

	var cfg models.VendorConfig
	var baseURL sql.NullString
	err := db.conn.QueryRowContext(ctx, query, tenantID, vendor).Scan(
		&cfg.ID,
		&cfg.TenantID,
		&cfg.Vendor,
		&cfg.APIKey,
		&baseURL,
		&cfg.Model,
		&cfg.Active,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrVendorConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if baseURL.Valid {
		cfg.BaseURL = &baseURL.String
	}

	return &cfg, nil
}

// GetFallbackPolicy loads the ordered vendor preference list for a
// (tenant, module) pair.
func (db *DB) GetFallbackPolicy(ctx context.Context, tenantID, module string) (*models.FallbackPolicy, error) {
	query := `
		SELECT id, tenant_id, module, vendors, enabled, created_at, updated_at
		FROM fallback_policies
		WHERE tenant_id = $1 AND module = $2
	`

	var policy models.FallbackPolicy
	err := db.conn.QueryRowContext(ctx, query, tenantID, module).Scan(
		&policy.ID,
		&policy.TenantID,
		&policy.Module,
		pq.Array(&policy.Vendors),
		&policy.Enabled,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrFallbackPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &policy, nil
}
