//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// bcrypt hash of "password123"
const testPasswordHash = "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A."

func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx,
		"INSERT INTO users (id, email, password_hash, role, is_active) VALUES ($1, $2, $3, $4, true) ON CONFLICT (email) DO NOTHING",
		userID, email, testPasswordHash, role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1 AND is_active = true", email).Scan(&userID)
	}

	return userID
}

func CreateTestVariant(t *testing.T, db DBLike, sku string, price int64, stock int32) uuid.UUID {
	t.Helper()

	productID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx,
		"INSERT INTO products (id, name, image) VALUES ($1, $2, $3)",
		productID, "Test Product "+sku, "")
	require.NoError(t, err)

	_, err = db.Exec(ctx,
		`INSERT INTO variants (product_id, sku, karat, stone_type, price, stock, gross_weight, is_available)
		 VALUES ($1, $2, '18', 'diamond', $3, $4, 4.2, true)
		 ON CONFLICT (sku) DO UPDATE SET price = $3, stock = $4`,
		productID, sku, price, stock)
	require.NoError(t, err)

	return productID
}

func CreateTestCoupon(t *testing.T, db DBLike, code string, amountOff int64) uuid.UUID {
	t.Helper()

	couponID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx,
		"INSERT INTO coupons (id, code, amount_off, is_active) VALUES ($1, $2, $3, true) ON CONFLICT (code) DO NOTHING",
		couponID, code, amountOff)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM coupons WHERE code = $1", code).Scan(&couponID)
	}

	return couponID
}

func CreateTestGiftCard(t *testing.T, db DBLike, code string, balance int64) uuid.UUID {
	t.Helper()

	cardID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx,
		"INSERT INTO gift_cards (id, code, balance, status) VALUES ($1, $2, $3, 'active') ON CONFLICT (code) DO NOTHING",
		cardID, code, balance)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM gift_cards WHERE code = $1", code).Scan(&cardID)
	}

	return cardID
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	productID := uuid.New()
	_, err := pool.Exec(ctx, `
		INSERT INTO products (id, name, image)
		VALUES ($1, 'Classic Diamond Ring', '')
	`, productID)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO variants (product_id, sku, karat, stone_type, price, stock, gross_weight, is_available)
		VALUES ($1, 'RING-18K-DIA-001', '18', 'diamond', 52000, 25, 4.2, true)
		ON CONFLICT (sku) DO NOTHING
	`, productID)
	return err
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var tbl string
			if err := rows.Scan(&tbl); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, tbl)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
