package notificator

import (
	"context"
	"fmt"

	"restaurant-floor/internal/common/config"
	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/common/mq"
	"restaurant-floor/internal/microservices/notificator/service"
)

// Start follows the floor's summary broadcasts until ctx is done.
func Start(ctx context.Context, cfg config.App, lg *logger.Logger) error {
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
	return service.New(client, lg).NotificatorService.Run(ctx)
}
