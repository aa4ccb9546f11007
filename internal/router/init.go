package router

import (
	"github.com/oksasatya/go-session-auth/config"
	"github.com/oksasatya/go-session-auth/internal/application"
	"github.com/oksasatya/go-session-auth/internal/container"
	"github.com/oksasatya/go-session-auth/internal/domain/repository"
	"github.com/oksasatya/go-session-auth/internal/infrastructure/cache"
	"github.com/oksasatya/go-session-auth/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-session-auth/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-session-auth/internal/interface/http"
	"github.com/oksasatya/go-session-auth/internal/router/modules"
	"github.com/oksasatya/go-session-auth/pkg/helpers"
)

type AccountModuleDeps struct {
	Authenticator *application.Authenticator
	Web           *handlers.WebHandler
	API           *handlers.APIHandler
}

// buildAccountRepo picks Postgres when a pool is present and memory otherwise,
// then layers the Redis cache on top when enabled.
func buildAccountRepo(c *container.Container) repository.AccountRepository {
	cfg := c.Config
	var repo repository.AccountRepository
	if c.PGPool != nil && cfg.StoreDriver != config.StoreDriverMemory {
		repo = pginfra.NewAccountRepository(c.PGPool)
	} else {
		repo = memory.NewAccountRepository()
	}
	if c.Redis != nil && cfg.AccountCacheEnabled {
		repo = cache.NewAccountRepository(repo, c.Redis, cfg.AccountCacheTTL, c.Logger)
	}
	return repo
}

func buildAccountDeps(c *container.Container) AccountModuleDeps {
	repo := buildAccountRepo(c)
	store := application.NewAccountStore(repo, helpers.NewBcryptHasher(c.Config.BcryptCost), c.Logger)
	auth := application.NewAuthenticator(store, c.Logger)

	return AccountModuleDeps{
		Authenticator: auth,
		Web:           handlers.NewWebHandler(auth, c.Logger),
		API:           handlers.NewAPIHandler(auth, c.Logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry, c *container.Container) {
	deps := buildAccountDeps(c)
	r.AddSite(modules.NewWebModule(deps.Web, deps.Authenticator, c.Logger))
	r.Add(modules.NewAccountModule(deps.API, deps.Authenticator, c.Logger))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
