package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "busbooking/internal/config"
	intdb "busbooking/internal/db"
	"busbooking/internal/events"
	router "busbooking/internal/http"
	"busbooking/internal/http/handlers"
	"busbooking/internal/locks"
	"busbooking/internal/metrics"
	"busbooking/internal/repositories"
	"busbooking/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db := intconfig.ConnectDB(env.DBDSN)
	defer intconfig.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	schemaCtx, cancelSchema := context.WithTimeout(ctx, 30*time.Second)
	if err := intdb.EnsureSchema(schemaCtx, db); err != nil {
		log.Fatalf("failed to prepare schema: %v", err)
	}
	cancelSchema()

	collector := metrics.NewCollector()

	routeRepo := repositories.RouteRepository{DB: db}
	busRepo := repositories.BusRepository{DB: db, Routes: routeRepo}
	scheduleRepo := repositories.ScheduleRepository{DB: db}
	ticketRepo := repositories.TicketRepository{DB: db}

	booking := services.BookingService{
		Buses:      busRepo,
		Schedules:  scheduleRepo,
		Tickets:    ticketRepo,
		Metrics:    collector,
		PendingTTL: env.PendingTTL,
	}

	if env.NATSURL != "" {
		pub, err := events.NewNATSPublisher(env.NATSURL, collector)
		if err != nil {
			log.Printf("warning: NATS unavailable at %s, ticket events disabled: %v", env.NATSURL, err)
		} else {
			defer pub.Close()
			booking.Events = pub
			log.Printf("publishing ticket events to %s", env.NATSURL)
		}
	}

	if env.RedisAddr != "" {
		rdb, err := locks.Connect(ctx, env.RedisAddr, env.RedisPassword)
		if err != nil {
			log.Printf("warning: %v, relying on DB locking only", err)
		} else {
			defer rdb.Close()
			booking.Locker = locks.NewRedisTripLocker(rdb)
			log.Printf("trip locks on redis %s", env.RedisAddr)
		}
	}

	api := &handlers.API{
		DB:        db,
		Routes:    services.RouteService{Routes: routeRepo, Buses: busRepo},
		Schedules: services.ScheduleService{Buses: busRepo, Schedules: scheduleRepo, Metrics: collector},
		Booking:   booking,
		Payments:  services.PaymentService{Booking: booking, PayeeID: env.UPIPayeeID, PayeeName: env.UPIPayeeName},
		Docs:      services.DocsService{Booking: booking, Buses: busRepo},
	}

	go services.PendingSweeper{Booking: booking, Interval: env.PendingSweepInterval}.Run(ctx)

	r := router.NewRouter(env, api, collector.Handler())

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly.")
}
