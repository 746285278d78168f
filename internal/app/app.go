package app

import (
	"net/http"

	"gorm.io/gorm"

	"pentrypal-go/internal/config"
	"pentrypal-go/internal/db"
	"pentrypal-go/internal/domain/session"
	"pentrypal-go/internal/domain/shopping"
	"pentrypal-go/internal/events"
	"pentrypal-go/internal/repository/inmemory"
	shoppingrepo "pentrypal-go/internal/repository/postgres/shopping"
	"pentrypal-go/internal/transport/httpserver"
	"pentrypal-go/internal/transport/httpserver/handler"
	"pentrypal-go/internal/transport/ws"
	"pentrypal-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	var (
		dbConn *gorm.DB
		repo   shopping.Repository
	)
	if cfg.DB.DSN == "" && cfg.Env == "development" {
		log.Warn("app: no DB_DSN set, using in-memory store")
		repo = inmemory.NewInMemoryShoppingRepository()
	} else {
		dbConn, err = db.NewPostgres(cfg.DB, log)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(dbConn, log); err != nil {
			return nil, err
		}
		repo = shoppingrepo.NewPostgres(dbConn)
	}

	bus := events.NewBus(cfg.Feed.SubscriberBuffer)
	lists := shopping.NewService(repo, bus)
	sessions := session.NewManager(lists, bus, log)

	handlers := handler.New(lists, sessions, log)
	feed := ws.NewFeedServer(bus, cfg.Feed, log)
	router := httpserver.NewRouter(cfg, handlers, feed, log)
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
