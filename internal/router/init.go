package router

import (
	"github.com/languagebridge/admin-api/internal/application"
	"github.com/languagebridge/admin-api/internal/container"
	gcsinfra "github.com/languagebridge/admin-api/internal/infrastructure/gcs"
	"github.com/languagebridge/admin-api/internal/infrastructure/postgres"
	handlers "github.com/languagebridge/admin-api/internal/interface/http"
	"github.com/languagebridge/admin-api/internal/router/modules"
	"github.com/languagebridge/admin-api/pkg/helpers"
)

// InitModules wires the services from the container singletons and registers
// every feature module on the registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	pool := container.GetPGPool()
	logger := container.GetLogger()

	users := postgres.NewUserStore(pool)
	addresses := postgres.NewAddressStore(pool)
	students := postgres.NewStudentStore(pool)
	tokens := postgres.NewTokenMetadataStore(pool)
	tx := postgres.NewTxManager(pool)
	assets := gcsinfra.NewAssetStore(container.GetGCS(), cfg.GCSBucket, logger)

	pub := container.GetRabbitPub()
	var emailPub application.EmailPublisher
	if pub != nil {
		emailPub = pub
	}

	studentSvc := application.NewStudentService(
		users, addresses, students, tokens,
		assets, tx, emailPub, logger,
		cfg.DefaultAvatarURL, pub != nil,
	)
	authSvc := application.NewAuthService(users, tokens, container.GetJWT(), container.GetRedis(), logger)

	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	r.Add(modules.NewStudentModule(handlers.NewStudentHandler(studentSvc, logger, cfg), container.GetJWT()))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, cookies, logger), container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
