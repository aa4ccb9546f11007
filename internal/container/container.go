package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-session-auth/config"
)

// Container carries the process-wide infrastructure handles built in main.
// It is passed explicitly to the router so tests can build isolated ones.
// PGPool and Redis are nil when the corresponding backend is disabled.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	PGPool *pgxpool.Pool
	Redis  *redis.Client
}

func New(cfg *config.Config, logger *logrus.Logger) *Container {
	return &Container{Config: cfg, Logger: logger}
}

func (c *Container) WithPGPool(p *pgxpool.Pool) *Container {
	c.PGPool = p
	return c
}

func (c *Container) WithRedis(r *redis.Client) *Container {
	c.Redis = r
	return c
}
