package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/betpulse/live-gate/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// Monetary values are stored as NUMERIC for exact decimal precision;
// selections are stored as a JSONB document alongside the coupon row.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) InsertCoupon(ctx context.Context, c *model.Coupon) error {
	selections, err := json.Marshal(c.Selections)
	if err != nil {
		return fmt.Errorf("marshal selections: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO coupons (id, user_id, selections, stake, total_odds, potential_win, placed_at)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5::NUMERIC, $6::NUMERIC, $7)`,
		c.ID, c.UserID, selections,
		c.Stake.String(), c.TotalOdds.String(), c.PotentialWin.String(),
		c.PlacedAt,
	)
	return err
}

func (s *PostgresStore) GetCoupon(ctx context.Context, id string) (*model.Coupon, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, selections,
		        stake::TEXT, total_odds::TEXT, potential_win::TEXT,
		        placed_at
		 FROM coupons WHERE id = $1`, id)

	c, err := scanCoupon(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get coupon %s: %w", id, err)
	}
	return c, nil
}

func (s *PostgresStore) ListCouponsByUser(ctx context.Context, userID string) ([]model.Coupon, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, selections,
		        stake::TEXT, total_odds::TEXT, potential_win::TEXT,
		        placed_at
		 FROM coupons WHERE user_id = $1
		 ORDER BY placed_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list coupons for user %s: %w", userID, err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("list coupons for user %s: %w", userID, err)
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	var selections []byte
	var stake, totalOdds, potentialWin string

	if err := row.Scan(&c.ID, &c.UserID, &selections,
		&stake, &totalOdds, &potentialWin, &c.PlacedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(selections, &c.Selections); err != nil {
		return nil, fmt.Errorf("unmarshal selections: %w", err)
	}
	c.Stake, _ = decimal.NewFromString(stake)
	c.TotalOdds, _ = decimal.NewFromString(totalOdds)
	c.PotentialWin, _ = decimal.NewFromString(potentialWin)
	return &c, nil
}
