// README: Entry point; loads config, wires services, starts HTTP server and the expiry sweeper.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cabswift/internal/config"
	"cabswift/internal/events"
	httptransport "cabswift/internal/http"
	"cabswift/internal/infra"
	"cabswift/internal/modules/booking"
	"cabswift/internal/modules/pricing"
	"cabswift/internal/modules/vehicle"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	pricingStore := pricing.NewStore(dbPool)
	pricingSvc := pricing.NewService(pricingStore)

	vehicleStore := vehicle.NewPGStore(dbPool)
	vehicleSvc := vehicle.NewService(vehicleStore, pricingSvc)

	bookingStore := booking.NewPGStore(dbPool)
	bookingSvc := booking.NewService(
		bookingStore,
		booking.NewVehicleGateway(vehicleStore),
		events.NewPublisher(redisClient),
		cfg.Booking,
	)

	handler := httptransport.NewRouter(bookingSvc, vehicleSvc, cfg.Auth.JWTSecret)
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go bookingSvc.RunExpirySweeper(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("cabswift-api listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
