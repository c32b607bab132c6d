package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/domain"
)

// GetDailyCap 读取持久化的每日上限，没有配置过时返回默认值
func (r *Repository) GetDailyCap() (int, error) {
	query := `
		SELECT daily_cap FROM capacity_settings WHERE id = 1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var value int
	if err := r.dbpool.QueryRowContext(ctx, query).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.cfg.Exclusion.DefaultDailyCap, nil
		}
		return 0, err
	}

	return value, nil
}

func (r *Repository) SetDailyCap(value int) error {
	// capacity_settings 是单行表，固定 id 为 1
	query := `
		INSERT INTO capacity_settings (id, daily_cap)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET daily_cap = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, value); err != nil {
		return err
	}

	return nil
}

// GetPeriodLimits 读取持久化的各小时段上限，没有配置过的段用默认值补齐
func (r *Repository) GetPeriodLimits() ([]domain.PeriodLimit, error) {
	query := `
		SELECT period, max_occupancy FROM period_limits
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	limits := make([]domain.PeriodLimit, domain.PeriodCount)
	for p := range limits {
		limits[p] = domain.PeriodLimit{Period: p, Limit: r.cfg.Exclusion.DefaultPeriodLimit}
	}

	for rows.Next() {
		var period, limit int
		if err := rows.Scan(&period, &limit); err != nil {
			return nil, err
		}
		if period >= 0 && period < domain.PeriodCount {
			limits[period].Limit = limit
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return limits, nil
}

func (r *Repository) SetPeriodLimit(period int, value int) error {
	query := `
		INSERT INTO period_limits (period, max_occupancy)
		VALUES ($1, $2)
		ON CONFLICT (period) DO UPDATE SET max_occupancy = $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, period, value); err != nil {
		return err
	}

	return nil
}
