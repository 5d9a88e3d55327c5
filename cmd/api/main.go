package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/taller-api/docs"
	"github.com/jhoicas/taller-api/internal/application/catalog"
	"github.com/jhoicas/taller-api/internal/application/inventory"
	"github.com/jhoicas/taller-api/internal/application/order"
	"github.com/jhoicas/taller-api/internal/application/payment"
	"github.com/jhoicas/taller-api/internal/application/ports"
	"github.com/jhoicas/taller-api/internal/application/sale"
	"github.com/jhoicas/taller-api/internal/application/ticket"
	"github.com/jhoicas/taller-api/internal/application/warranty"
	"github.com/jhoicas/taller-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/taller-api/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/taller-api/internal/interfaces/http"
	"github.com/jhoicas/taller-api/pkg/config"
	"github.com/jhoicas/taller-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir store")
	}
	defer st.close()

	// Notificaciones: websocket siempre; Kafka si hay brokers.
	hub := notify.NewHub(cfg.Notify.WSBuffer, log.Component("ws"))
	go hub.Run(ctx)
	sinks := []ports.Notifier{hub}
	if len(cfg.Notify.KafkaBrokers) > 0 {
		kp := notify.NewKafkaPublisher(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic)
		defer kp.Close()
		sinks = append(sinks, kp)
		log.Info().Strs("brokers", cfg.Notify.KafkaBrokers).Str("topic", cfg.Notify.KafkaTopic).Msg("publicando eventos en Kafka")
	}
	notifier := notify.NewDispatcher(sinks...)

	clock := ports.SystemClock{}
	repos := st.repos

	ticketUC := ticket.NewUseCase(st.tx, repos.Tickets, repos.Products, nil, clock, notifier, log.Component("ticket"),
		ticket.Config{TTL: cfg.Ticket.TTL})
	orderUC := order.NewUseCase(st.tx, repos.Orders, clock, notifier, log.Component("order"),
		order.Config{DiagnosisFee: cfg.Order.DiagnosisFee})
	paymentUC := payment.NewUseCase(st.tx, orderUC, clock, notifier, log.Component("payment"))
	saleUC := sale.NewUseCase(st.tx, repos.Products, repos.Sales, clock, notifier, log.Component("sale"))
	warrantyUC := warranty.NewUseCase(repos.Tickets, repos.Products, clock)
	movementUC := inventory.NewRegisterMovementUseCase(st.tx, repos.Products, repos.Movements, clock, notifier, log.Component("inventory"))
	replenishmentUC := inventory.NewReplenishmentUseCase(repos.Products, repos.Movements, clock)
	productUC := catalog.NewProductUseCase(st.tx, repos.Products, clock, log.Component("catalog"))

	go ticketUC.RunSweeper(ctx, cfg.Ticket.SweepInterval)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	docs.SwaggerInfo.Host = cfg.HTTP.Addr()
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Taller API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.App.StoreDriver, "ws_clients": hub.Clients()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Tickets:       ticketUC,
		Orders:        orderUC,
		Payments:      paymentUC,
		Sales:         saleUC,
		Warranties:    warrantyUC,
		Inventory:     movementUC,
		Replenishment: replenishmentUC,
		Products:      productUC,
		Receipts:      infrapdf.NewReceiptGenerator(cfg.App.ShopName, nil),
		WebSocket:     hub.Handler(),
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
