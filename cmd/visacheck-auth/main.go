package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/redis/go-redis/v9"
	auth "github.com/visacheck/go-auth"
)

type App struct {
	config   *gconfig.Container[*AppConfig]
	logger   *glog.BaseLogger
	cache    *auth.RedisTokenCache
	provider *auth.Provider
	guard    *auth.Guard
	srv      router.Server[*fiber.App]
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("visacheck"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(DefaultAppConfig()).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	app.GetLogger("config").Debug("loaded config", "config", print.MaybePrettyJSON(cfg.Raw().Redacted()))

	if err := WithAuth(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	addr := cfg.Raw().HTTP.Addr
	app.GetLogger("app").Info("listening", "addr", addr)
	app.srv.Serve(addr)

	WaitExitSignal()
}

func WithAuth(ctx context.Context, app *App) error {
	cfg := app.config.Raw()

	client, err := auth.NewClient(cfg.Visacheck, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "unable to reach redis")
	}
	app.cache = auth.NewRedisTokenCache(rdb)

	cookies := auth.ContextCookieQueue{Logger: app.GetLogger("auth:cookies")}
	app.provider = auth.NewProvider(client, app.cache, cookies, auth.BcryptHasher{}).
		WithLogger(app.GetLogger("auth:prv"))

	tokens, err := auth.NewSessionTokens([]byte(cfg.Session.Key), auth.DefaultSessionLifetime, "visacheck")
	if err != nil {
		return err
	}
	tokens.WithLogger(app.GetLogger("auth:tokens"))

	app.guard = auth.NewGuard(app.provider, tokens, auth.WithGuardLogger(app.GetLogger("auth:guard")))

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: true,
			StrictRouting:     false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	srv.Router().Use(auth.QueuedCookies())
	srv.Router().Use(auth.ClientMiddleware(app.provider.Client(), app.cache, app.GetLogger("auth:client")))

	srv.Router().Post("/login", loginHandler(app))
	srv.Router().Post("/logout", logoutHandler(app))
	srv.Router().Get("/me", meHandler, app.guard.Protected())
	srv.Router().Get("/company", companyHandler, app.guard.Protected())

	app.srv = srv
	return nil
}

func loginHandler(app *App) router.HandlerFunc {
	return func(ctx router.Context) error {
		payload := new(auth.Credentials)
		if err := ctx.Bind(payload); err != nil {
			return ctx.JSON(router.StatusBadRequest, map[string]string{
				"error": "invalid payload",
			})
		}

		user, err := app.guard.Attempt(ctx, *payload, payload.Remember)
		if err != nil {
			if auth.IsTextCode(err, auth.TextCodeInvalidCredentials) {
				return ctx.JSON(router.StatusUnauthorized, map[string]string{
					"error": "invalid credentials",
				})
			}
			return err
		}

		return ctx.JSON(router.StatusOK, map[string]any{
			"id": user.AuthIdentifier(),
		})
	}
}

func logoutHandler(app *App) router.HandlerFunc {
	return func(ctx router.Context) error {
		if err := app.guard.Logout(ctx); err != nil {
			app.GetLogger("auth:http").Warn("logout", "error", err)
		}
		return ctx.JSON(router.StatusOK, map[string]string{
			"status": "logged out",
		})
	}
}

func meHandler(ctx router.Context) error {
	user, ok := auth.UserFromContext(ctx.Context())
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "unauthenticated",
		})
	}
	return ctx.JSON(router.StatusOK, user)
}

func companyHandler(ctx router.Context) error {
	user, ok := auth.UserFromContext(ctx.Context())
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "unauthenticated",
		})
	}

	record, ok := user.(*auth.User)
	if !ok {
		return ctx.JSON(router.StatusOK, map[string]any{})
	}

	company, err := record.Company(ctx.Context(), true)
	if err != nil {
		return ctx.JSON(router.StatusNotFound, map[string]string{
			"error": err.Error(),
		})
	}

	return ctx.JSON(router.StatusOK, company)
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
