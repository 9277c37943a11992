package main

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/deshship/courier/internal/config"
	"github.com/deshship/courier/internal/telemetry"
	"github.com/deshship/courier/pkg/courier"
	"github.com/deshship/courier/pkg/courier/mock"
	"github.com/deshship/courier/pkg/courier/pathao"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(cfg *config.Config) (*otelzap.Logger, error) {
	return telemetry.NewLogger(cfg.LogLevel, cfg.ServiceName)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version, cfg.Attributes()...)
	return shutdown, err
}

func initManager(cfg *config.Config, logger *otelzap.Logger) (*courier.Manager, error) {
	manager := courier.NewManager(logger)

	var tracer trace.Tracer
	if cfg.OTELEnabled {
		tracer = otel.GetTracerProvider().Tracer(cfg.ServiceName)
	}

	// Register enabled couriers. Factories keep construction lazy so a
	// misconfigured driver only fails when first resolved.
	if cfg.PathaoEnabled {
		manager.RegisterFactory(pathao.Name, func() (courier.Courier, error) {
			return pathao.New(pathao.Config{
				ClientID:     cfg.PathaoClientID,
				ClientSecret: cfg.PathaoClientSecret,
				Username:     cfg.PathaoUsername,
				Password:     cfg.PathaoPassword,
				StoreID:      cfg.PathaoStoreID,
				Environment:  cfg.PathaoEnvironment,
				BaseURL:      cfg.PathaoBaseURL,
				UseMock:      cfg.PathaoUseMock,
			}, logger, tracer)
		})
	}

	if cfg.MockEnabled {
		manager.Register(mock.New("mock"))
	}

	return manager, nil
}
