// Package bootstrap orchestrates application lifecycle: typed configuration,
// component registration, startup/shutdown hooks, signal handling and the
// startup summary.
//
//	app, err := bootstrap.NewApp(&cfg)
//	_ = app.RegisterComponent(server.NewComponent(srv))
//	app.OnStop(shutdownTelemetry)
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
