package main

import (
	"context"
	"smartlinc-bridge/internal/adapters/output/persistence"
	"smartlinc-bridge/internal/adapters/output/smartlinc"
	"smartlinc-bridge/internal/domain/model"
	"smartlinc-bridge/internal/domain/service"
	"smartlinc-bridge/internal/logging"
	"smartlinc-bridge/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// app holds everything a command needs, built from the loaded config.
type app struct {
	cfg        *model.Config
	log        *zap.Logger
	registry   *prometheus.Registry
	controller *service.DeviceController
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	configService := service.NewConfigService(persistence.NewViperConfigRepository(configPath))
	cfg, err := configService.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	gateway, err := smartlinc.NewGateway(cfg.Gateway)
	if err != nil {
		return nil, err
	}

	reg := metrics.NewRegistry()
	opts := append(service.ControllerOptions(cfg),
		service.WithLogger(logger.Named("controller")),
		service.WithTelemetry(metrics.NewAppMetrics(reg)),
	)

	logger.Debug("gateway configured",
		zap.String("host", cfg.Gateway.Host),
		zap.Int("port", cfg.Gateway.Port),
		zap.String("transport", string(cfg.Gateway.Transport)))

	return &app{
		cfg:        cfg,
		log:        logger,
		registry:   reg,
		controller: service.NewDeviceController(gateway, opts...),
	}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}
