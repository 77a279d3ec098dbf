package main

import (
	"github.com/alexisbeaulieu97/manifold/internal/config"
	"github.com/alexisbeaulieu97/manifold/internal/events"
	"github.com/alexisbeaulieu97/manifold/internal/logger"
	"github.com/alexisbeaulieu97/manifold/internal/plugin"
)

// AppContext bundles long-lived services created at startup. Commands
// receive an explicit context value; there is no process-wide registry
// or bus.
type AppContext struct {
	Logger   *logger.Logger
	Registry *plugin.Registry
	Bus      *events.Bus
}

func newAppContext(flags *rootFlags) (*AppContext, error) {
	log, err := logger.New(logger.Options{
		Level:  logLevel(flags),
		Pretty: prettyLogs(),
	})
	if err != nil {
		return nil, err
	}

	registry := plugin.NewRegistry(config.NewValidator(), log.WithComponent("registry"))
	bus := events.NewBus(log.WithComponent("events"))

	return &AppContext{
		Logger:   log,
		Registry: registry,
		Bus:      bus,
	}, nil
}
