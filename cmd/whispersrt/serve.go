package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/whispersrt/bootstrap"
	"github.com/kbukum/whispersrt/conversion"
	"github.com/kbukum/whispersrt/observability"
	"github.com/kbukum/whispersrt/server"
	"github.com/kbukum/whispersrt/webui"
)

func newServeCommand(opts *loadOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload page and the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*opts)
			if err != nil {
				return err
			}
			if addr != "" {
				host, port, err := splitAddr(addr)
				if err != nil {
					return err
				}
				cfg.Server.Host, cfg.Server.Port = host, port
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (host:port), overrides server.host and server.port")
	return cmd
}

func serve(ctx context.Context, cfg *AppConfig) error {
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	shutdown, err := observability.Setup(ctx, cfg.Observability, telemetryResource(cfg))
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	app.OnStop(shutdown)

	var metrics *observability.Metrics
	if cfg.Observability.Enabled {
		if metrics, err = observability.NewMetrics(observability.Meter(serviceName)); err != nil {
			return err
		}
	}

	providers := conversion.NewProviders(cfg.Transcription, app.Logger)
	srv := server.New(cfg.Server, app.Logger)

	// Providers start before the listener so requests never hit an empty manager.
	if err := app.RegisterComponent(providers); err != nil {
		return err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}

	svc, err := newConversionService(cfg, providers, app.Logger, metrics)
	if err != nil {
		return err
	}
	h, err := webui.New(svc, app.Logger)
	if err != nil {
		return err
	}
	srv.ApplyDefaults(cfg.Name, app.Components.HealthAll)
	h.Register(srv.GinEngine())

	app.OnConfigure(func(_ context.Context, a *bootstrap.App[*AppConfig]) error {
		name, target := providerTarget(a.Cfg.Transcription)
		a.Summary.TrackClient(name, target, "transcription")
		if a.Cfg.Observability.Enabled {
			a.Summary.TrackClient("otlp", a.Cfg.Observability.Endpoint, "telemetry")
		}
		return nil
	})

	return app.Run(ctx)
}
