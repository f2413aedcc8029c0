package service

import (
	"context"
	"fmt"
	"smartlinc-bridge/internal/domain/model"
	"smartlinc-bridge/internal/domain/protocol"
	"smartlinc-bridge/internal/domain/translator"
	"smartlinc-bridge/internal/ports"
)

type ConfigService struct {
	repo ports.ConfigRepository
}

func NewConfigService(repo ports.ConfigRepository) *ConfigService {
	return &ConfigService{
		repo: repo,
	}
}

func (s *ConfigService) GetConfig(ctx context.Context) (*model.Config, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Gateway.Host == "" {
		return nil, fmt.Errorf("gateway host is not configured")
	}
	return cfg, nil
}

func (s *ConfigService) UpdateConfig(ctx context.Context, cfg *model.Config) error {
	return s.repo.Save(ctx, cfg)
}

// ControllerOptions turns the polling and protocol settings into controller options.
func ControllerOptions(cfg *model.Config) []Option {
	return []Option{
		WithMatcher(protocol.Matcher{ReplyInfix: cfg.Protocol.ReplyInfix}),
		WithPollInterval(cfg.Polling.Interval),
		WithLimits(Limits{
			MaxResends:        cfg.Polling.MaxResends,
			MaxStatusAttempts: cfg.Polling.MaxStatusAttempts,
			MaxProgressPolls:  cfg.Polling.MaxProgressPolls,
		}),
		WithTranslatorFactory(translator.NewFactory(cfg.Translator.ToHueFormula)),
	}
}
