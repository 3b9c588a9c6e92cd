// Package bot wires the marketplace onto the Telegram surface: commands,
// inline-button callbacks, and the per-user conversation flows.
package bot

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"log/slog"

	"github.com/xiniluca/skillswap/core/logger"
	tg "github.com/xiniluca/skillswap/core/telegram"
	"github.com/xiniluca/skillswap/core/telegram/commands"
	"github.com/xiniluca/skillswap/core/telegram/router"
	"github.com/xiniluca/skillswap/internal/config"
	"github.com/xiniluca/skillswap/internal/health"
	"github.com/xiniluca/skillswap/internal/repository"
	"github.com/xiniluca/skillswap/internal/service"
	"github.com/xiniluca/skillswap/internal/session"

	tele "gopkg.in/telebot.v4"
)

// App is the assembled bot application.
type App struct {
	cfg      *config.Config
	market   *service.Marketplace
	sessions session.Store
	health   *health.Server

	stopBackground context.CancelFunc
}

// New assembles repositories, the marketplace service, and the conversation
// store on top of an already-connected database.
func New(cfg *config.Config, db *sqlx.DB) *App {
	market := service.NewMarketplace(
		cfg.Marketplace,
		repository.NewUserRepository(db),
		repository.NewServiceRepository(db),
		repository.NewOrderRepository(db),
		repository.NewReviewRepository(db),
		repository.NewStatsRepository(db),
	)

	var store session.Store
	if cfg.Session.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		store = session.NewRedisStore(client, cfg.Session.TTL())
	} else {
		store = session.NewMemoryStore(cfg.Session.TTL())
	}

	return &App{
		cfg:      cfg,
		market:   market,
		sessions: store,
		health:   health.NewServer(cfg.Health.Listen),
	}
}

// TelegramRunOptions builds the full bot wiring for the core runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	a.registerCommands(reg)
	a.registerCallbacks(reg)
	reg.SetTextFallback(func(c tele.Context) error {
		return c.Send("I didn't understand that. Use the menu below or type /help.", backToMenuMarkup())
	})
	reg.SetCallbackNotFound(func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "This button has expired. Open the menu with /start."})
	})

	flows := &flowManager{app: a}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(flows, reg, router.TextOptions{})...)

	opts := tg.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			bg, cancel := context.WithCancel(context.Background())
			a.stopBackground = cancel

			go session.RunSweeper(bg, a.sessions, a.cfg.Session.SweepInterval(), func(removed int) {
				logger.SVCSessions.Info("stale conversations evicted",
					slog.String("event", "session.sweep"),
					slog.Int("count", removed),
				)
			})
			go a.market.RunPromotionSweeper(bg, time.Hour)
			a.health.Start()
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			if a.stopBackground != nil {
				a.stopBackground()
			}
			a.market.Close()
			return a.health.Shutdown(ctx)
		},
	}
	return opts, nil
}

func (a *App) registerCommands(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Register or open the main menu",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "Show available commands",
	})
	reg.RegisterCommand("/profile", commands.Command{
		Handler:     a.handleProfileCommand,
		Description: "View your profile",
	})
	reg.RegisterCommand("/browse", commands.Command{
		Handler:     a.handleBrowseCommand,
		Description: "Browse all services",
	})
	reg.RegisterCommand("/search", commands.Command{
		Handler:     a.handleSearchCommand,
		Description: "Search for services",
	})
	reg.RegisterCommand("/myservices", commands.Command{
		Handler:     a.handleMyServicesCommand,
		Description: "View your services",
	})
	reg.RegisterCommand("/myorders", commands.Command{
		Handler:     a.handleMyOrdersCommand,
		Description: "View your orders",
	})
	reg.RegisterCommand("/addservice", commands.Command{
		Handler:     a.handleAddServiceCommand,
		Description: "Add a new service",
	})
	reg.RegisterCommand("/promote", commands.Command{
		Handler:     a.handlePromoteCommand,
		Description: "Promote your services",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.handlePlatformStats,
		Description: "Platform statistics",
		AdminOnly:   true,
		Hidden:      true,
	})
}

func (a *App) registerCallbacks(reg *tg.Registry) {
	cb := map[string]tele.HandlerFunc{
		cbMenuBrowse:     a.cbBrowse,
		cbMenuSearch:     a.cbSearch,
		cbMenuMyOrders:   a.cbMyOrders,
		cbMenuMyServices: a.cbMyServices,
		cbMenuSales:      a.cbSalesDashboard,
		cbMenuAddService: a.cbAddService,
		cbMenuProfile:    a.cbProfile,
		cbMenuAbout:      a.cbAbout,
		cbMenuTopSellers: a.cbTopSellers,
		cbMenuPromote:    a.cbPromotionOptions,
		cbMenuHelp:       a.cbHelp,
		cbBackToMenu:     a.cbBackToMenu,

		cbRole:           a.cbRoleChosen,
		cbBuy:            a.cbBuy,
		cbReqText:        a.cbRequirementsText,
		cbReqDocs:        a.cbRequirementsDocs,
		cbSendRequest:    a.cbSendRequest,
		cbSendQuote:      a.cbSendQuote,
		cbAcceptQuote:    a.cbAcceptQuote,
		cbDeclineQuote:   a.cbDeclineQuote,
		cbDeclineRequest: a.cbDeclineRequest,
		cbMessageBuyer:   a.cbMessageBuyer,
		cbMessageSeller:  a.cbMessageSeller,
		cbRate:           a.cbRate,
		cbPromoteService: a.cbPromoteService,
	}
	for key, handler := range cb {
		_ = reg.RegisterCallback(key, handler)
	}
}
