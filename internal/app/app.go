package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bufaso/shopbot/internal/adapters/notify"
	"github.com/bufaso/shopbot/internal/adapters/repo/postgres"
	"github.com/bufaso/shopbot/internal/adapters/sheets"
	"github.com/bufaso/shopbot/internal/adapters/telegram"
	"github.com/bufaso/shopbot/internal/bot"
	"github.com/bufaso/shopbot/internal/usecase"
)

// channelPostEvery spaces channel posts out to stay under flood limits.
const channelPostEvery = 2 * time.Second

type App struct {
	DB        *gorm.DB
	Bus       *gochannel.GoChannel
	Catalog   *usecase.CatalogUC
	Orders    *usecase.OrderUC
	Checkout  *usecase.CheckoutUC
	Publisher *usecase.PublisherUC
	Bot       *bot.Bot
	Notifier  *notify.Notifier
}

// NewApp wires the store, the bus, the usecases and the bot together.
// The Google Sheet is the primary store; DB_DSN switches catalog and orders
// to Postgres while publishing keeps needing the sheet.
func NewApp(ctx context.Context) (*App, error) {
	token := strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is not set")
	}

	a := &App{
		Bus: gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
	}

	var catalog *usecase.CatalogUC
	var orders *usecase.OrderUC
	publisher := &usecase.PublisherUC{Limiter: rate.NewLimiter(rate.Every(channelPostEvery), 1)}

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn != "" {
		db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgres.MigrateAndSeed(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.DB = db
		catalog = usecase.NewCatalogUC(postgres.NewCatalogRepo(db))
		orders = usecase.NewOrderUC(postgres.NewOrderRepo(db), a.Bus)
		log.Info().Msg("store: postgres")
	}

	if dsn == "" || os.Getenv("SPREADSHEET_ID") != "" {
		sc, err := sheets.NewClient(ctx)
		if err != nil {
			if dsn == "" {
				return nil, fmt.Errorf("sheets client: %w", err)
			}
			log.Warn().Err(err).Msg("sheets unavailable, channel publishing disabled")
		} else {
			if dsn == "" {
				catalog = usecase.NewCatalogUC(sheets.NewCatalogRepo(sc))
				orders = usecase.NewOrderUC(sheets.NewOrderRepo(sc), a.Bus)
				log.Info().Msg("store: google sheets")
			}
			publisher.Posts = sheets.NewPublishRepo(sc)
		}
	}

	tg := telegram.New(token)
	checkout := usecase.NewCheckoutUC(orders)
	if publisher.Posts == nil {
		publisher = nil
	}
	b := bot.New(tg, catalog, orders, checkout, publisher)
	if publisher != nil {
		publisher.Channel = b
	}

	a.Catalog = catalog
	a.Orders = orders
	a.Checkout = checkout
	a.Publisher = publisher
	a.Bot = b
	a.Notifier = notify.New(a.Bus, b)
	return a, nil
}

// HTTPHandler serves the liveness endpoints used by the hosting platform and
// the keep-alive pinger.
func (a *App) HTTPHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("shopbot is running"))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return r
}
