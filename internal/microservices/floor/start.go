package floor

import (
	"context"
	"fmt"

	"restaurant-floor/internal/common/clock"
	"restaurant-floor/internal/common/config"
	"restaurant-floor/internal/common/httpx"
	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/common/mq"
	"restaurant-floor/internal/microservices/floor/handlers"
	"restaurant-floor/internal/microservices/floor/publisher"
	"restaurant-floor/internal/microservices/floor/service"
	"restaurant-floor/internal/seed"
)

// Run serves the floor API until ctx is done. With RabbitMQ disabled events
// are dropped and the ledger still works.
func Run(ctx context.Context, cfg config.App, lg *logger.Logger) error {
	loc, err := cfg.Floor.Location()
	if err != nil {
		return err
	}
	floor, err := seed.Load(cfg.Floor.Seed)
	if err != nil {
		return fmt.Errorf("load floor: %w", err)
	}
	l, err := floor.Ledger(clock.Real())
	if err != nil {
		return fmt.Errorf("build ledger: %w", err)
	}
	lg.Info("floor_loaded", map[string]any{"tables": len(floor.Tables), "menu_items": len(floor.Menu), "timezone": loc.String()})

	var pub service.Publisher = publisher.Nop{}
	if cfg.Rabbit.Enabled {
		if err := cfg.RequireRabbit(); err != nil {
			return err
		}
		client, err := mq.Dial(cfg.Rabbit)
		if err != nil {
			return fmt.Errorf("rabbitmq connect: %w", err)
		}
		defer client.Close()
		if err := client.DeclareAll(); err != nil {
			return err
		}
		lg.Info("rabbitmq_connected", map[string]any{"host": cfg.Rabbit.Host, "port": cfg.Rabbit.Port})
		pub = publisher.NewAMQP(client)
	}

	svc := service.New(l, pub, lg, loc)
	mux := handlers.Router(handlers.New(svc))
	srv := httpx.New(cfg.HTTP, httpx.Logged(lg, mux))

	lg.Info("service_started", map[string]any{"port": cfg.HTTP.Port})
	if err := srv.Run(ctx); err != nil {
		return err
	}
	lg.Info("graceful_shutdown", nil)
	return nil
}
