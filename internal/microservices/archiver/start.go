package archiver

import (
	"context"
	"fmt"

	"restaurant-floor/internal/common/clock"
	"restaurant-floor/internal/common/config"
	"restaurant-floor/internal/common/db"
	"restaurant-floor/internal/common/httpx"
	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/common/mq"
	"restaurant-floor/internal/microservices/archiver/handlers"
	"restaurant-floor/internal/microservices/archiver/repository"
	"restaurant-floor/internal/microservices/archiver/service"
	"restaurant-floor/internal/seed"
)

// Run stores settled orders from the floor exchange in Postgres and serves
// daily reports over them until ctx is done.
func Run(ctx context.Context, cfg config.App, lg *logger.Logger) error {
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	if err := cfg.RequireRabbit(); err != nil {
		return err
	}
	loc, err := cfg.Floor.Location()
	if err != nil {
		return err
	}
	floor, err := seed.Load(cfg.Floor.Seed)
	if err != nil {
		return fmt.Errorf("load floor: %w", err)
	}

	conn, err := db.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := conn.Migrate(ctx); err != nil {
		return err
	}
	lg.Info("db_connected", map[string]any{"host": cfg.Database.Host, "database": cfg.Database.Name})

	client, err := mq.Dial(cfg.Rabbit)
	if err != nil {
		return fmt.Errorf("rabbitmq connect: %w", err)
	}
	defer client.Close()
	if err := client.DeclareAll(); err != nil {
		return err
	}
	lg.Info("rabbitmq_connected", map[string]any{"host": cfg.Rabbit.Host, "port": cfg.Rabbit.Port})

	svc := service.New(repository.New(conn), client, clock.Real(), lg, loc)
	mux := handlers.Router(handlers.New(svc, floor.MenuName))
	srv := httpx.New(cfg.HTTP, httpx.Logged(lg, mux))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() { errCh <- svc.ArchiverService.Run(ctx) }()
	go func() { errCh <- srv.Run(ctx) }()
	lg.Info("service_started", map[string]any{"port": cfg.HTTP.Port, "queue": mq.ArchiveQueue})

	// first to stop takes the other down
	first := <-errCh
	cancel()
	second := <-errCh
	if first != nil {
		return first
	}
	return second
}
