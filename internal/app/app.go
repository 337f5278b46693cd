package app

import (
	"context"
	"fmt"
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/config"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	dbConnectAttempts = 5
	dbConnectTimeout  = 5 * time.Second
	dbFirstBackoff    = 500 * time.Millisecond
)

// App holds the process-wide resources shared by the serve and
// expire-notices commands.
type App struct {
	Config *config.Config
	DB     *pgxpool.Pool
}

// NewApp opens the tenancy database, retrying with exponential backoff while
// the database comes up.
func NewApp(cfg *config.Config) (*App, error) {
	pool, err := openTenancyDB(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return &App{Config: cfg, DB: pool}, nil
}

func (a *App) Close() {
	if a.DB == nil {
		return
	}
	a.DB.Close()
	utils.Logger.WithField("app", a.Config.AppName).Info("tenancy DB pool closed")
}

func openTenancyDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("parse DB url: %w", err)
	}
	poolCfg.MaxConnIdleTime = 2 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	wait := dbFirstBackoff
	for attempt := 1; ; attempt++ {
		pool, err := dialAndPing(ctx, poolCfg)
		if err == nil {
			utils.Logger.WithField("attempt", attempt).Infof("%s connected to tenancy DB", cfg.AppName)
			return pool, nil
		}
		if attempt == dbConnectAttempts {
			return nil, fmt.Errorf("tenancy DB unreachable after %d attempts: %w", attempt, err)
		}
		utils.Logger.WithError(err).Warnf("DB connect attempt %d/%d failed, next try in %v", attempt, dbConnectAttempts, wait)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
}

func dialAndPing(ctx context.Context, poolCfg *pgxpool.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbConnectTimeout)
	defer cancel()

	pool, err := pgxpool.ConnectConfig(ctx, poolCfg.Copy())
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
