// Package server arma el handler HTTP del gateway con todas sus
// dependencias cableadas.
package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/trustgate/internal/config"
	healthctrl "github.com/dropDatabas3/trustgate/internal/http/controllers/health"
	mfactrl "github.com/dropDatabas3/trustgate/internal/http/controllers/mfa"
	partnerctrl "github.com/dropDatabas3/trustgate/internal/http/controllers/partner"
	relayctrl "github.com/dropDatabas3/trustgate/internal/http/controllers/relay"
	reputationctrl "github.com/dropDatabas3/trustgate/internal/http/controllers/reputation"
	mw "github.com/dropDatabas3/trustgate/internal/http/middlewares"
	"github.com/dropDatabas3/trustgate/internal/http/router"
	partnersvc "github.com/dropDatabas3/trustgate/internal/http/services/partner"
	relaysvc "github.com/dropDatabas3/trustgate/internal/http/services/relay"
	reputationsvc "github.com/dropDatabas3/trustgate/internal/http/services/reputation"
	"github.com/dropDatabas3/trustgate/internal/metrics"
	"github.com/dropDatabas3/trustgate/internal/mfa"
	"github.com/dropDatabas3/trustgate/internal/provider"
	"github.com/dropDatabas3/trustgate/internal/rate"
)

// limiterAdapter adapta rate.Limiter a la interfaz del middleware.
type limiterAdapter struct {
	inner rate.Limiter
}

func (a limiterAdapter) Allow(ctx context.Context, key string) (mw.RateLimitResult, error) {
	res, err := a.inner.Allow(ctx, key)
	if err != nil {
		return mw.RateLimitResult{}, err
	}
	return mw.RateLimitResult{
		Allowed:    res.Allowed,
		Remaining:  res.Remaining,
		RetryAfter: res.RetryAfter,
	}, nil
}

// BuildHandler arma el handler completo a partir de la configuración.
// Retorna el handler y un cleanup para el shutdown.
func BuildHandler(cfg *config.Config) (http.Handler, func() error, error) {
	// 1. Métricas
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := metrics.RegisterGateway(registry); err != nil {
		return nil, nil, err
	}

	// 2. Forwarders: uno por provider, cada uno con su timeout.
	reputationFw := provider.NewForwarder(config.DurationOr(cfg.Reputation.Timeout, provider.DefaultTimeout))
	partnerFw := provider.NewForwarder(config.DurationOr(cfg.Partner.Timeout, provider.DefaultTimeout))
	identityFw := provider.NewForwarder(config.DurationOr(cfg.Identity.Timeout, provider.DefaultTimeout))
	challengeFw := provider.NewForwarder(config.DurationOr(cfg.Challenge.Timeout, provider.DefaultTimeout))

	// 3. Services
	reputationSvc := reputationsvc.NewService(reputationFw, cfg.Reputation.BaseURL, cfg.Reputation.ProbeTarget)
	partnerSvc := partnersvc.NewService(partnerFw, cfg.Partner.BaseURL, cfg.Partner.TokenPath)
	relaySvc := relaysvc.NewService(partnerFw, cfg.Partner.BaseURL, cfg.Partner.DownloadPath)

	// 4. MFA: providers HTTP + orquestador
	identityClient := provider.NewIdentityClient(identityFw, cfg.Identity.BaseURL, cfg.Identity.APIKey)
	challengeClient := provider.NewChallengeClient(challengeFw, cfg.Challenge.BaseURL, cfg.Challenge.SiteSecret)
	orchestrator := mfa.NewOrchestrator(config.MustDuration(cfg.MFA.SessionTTL), challengeClient, identityClient)

	// 5. Rate limiter (opcional)
	var limiter mw.RateLimiter
	var redisClient *rdb.Client
	cleanup := func() error { return nil }

	if cfg.Rate.Enabled {
		window := config.MustDuration(cfg.Rate.Window)
		if cfg.Cache.Kind == "redis" {
			redisClient = rdb.NewClient(&rdb.Options{
				Addr: cfg.Cache.Redis.Addr,
				DB:   cfg.Cache.Redis.DB,
			})
			limiter = limiterAdapter{rate.NewRedisLimiter(redisClient, cfg.Cache.Redis.Prefix, cfg.Rate.MaxRequests, window)}
			cleanup = redisClient.Close
		} else {
			limiter = limiterAdapter{rate.NewMemoryLimiter(cfg.Rate.MaxRequests, window)}
		}
	}

	// 6. Readiness: el gateway es stateless, el único backend propio es
	// Redis cuando el rate limiter lo usa.
	var checks []healthctrl.Check
	if redisClient != nil {
		checks = append(checks, healthctrl.Check{
			Name: "redis",
			Fn: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		})
	}

	// 7. Router
	handler := router.New(router.Deps{
		Reputation:  reputationctrl.NewController(reputationSvc),
		Partner:     partnerctrl.NewController(partnerSvc),
		Relay:       relayctrl.NewController(relaySvc),
		MFA:         mfactrl.NewController(orchestrator),
		Health:      healthctrl.NewController(checks...),
		RateLimiter: limiter,
		Registry:    registry,
	})

	return handler, cleanup, nil
}
