package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/manifold/internal/config"
	"github.com/alexisbeaulieu97/manifold/internal/events"
	"github.com/alexisbeaulieu97/manifold/internal/hooks"
)

const lifecycleEventName = "plugin.lifecycle"

func newRunCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <manifest>",
		Short: "Register, initialize, and clean up the manifest's plugins",
		Long: `Run performs one full lifecycle pass over the manifest: every plugin is
registered, its PRE_INIT and POST_INIT hooks execute around initialization,
lifecycle transitions are mirrored on the event bus, and each plugin is
cleaned up before exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(flags)
			if err != nil {
				return err
			}
			return runLifecycle(cmd.Context(), app, args[0])
		},
	}

	return cmd
}

func runLifecycle(ctx context.Context, app *AppContext, manifestPath string) error {
	manifest, err := config.ParseManifest(manifestPath)
	if err != nil {
		return err
	}

	sub := app.Bus.Subscribe(lifecycleEventName, func(ctx context.Context, evt events.Event) error {
		app.Logger.WithFields(map[string]any{"event": evt.Name, "payload": evt.Payload}).Info("lifecycle event")
		return nil
	})
	defer sub.Unsubscribe()

	for i := range manifest.Plugins {
		cfg := &manifest.Plugins[i]
		inst, err := app.Registry.Register(ctx, cfg)
		if err != nil {
			return fmt.Errorf("register %q: %w", cfg.Name, err)
		}

		reportHookFailures(app, config.EventPreInit, app.Registry.ExecuteHooks(ctx, config.EventPreInit, hookPayload(inst.Name())))

		if err := inst.Initialize(ctx); err != nil {
			return fmt.Errorf("initialize %q: %w", inst.Name(), err)
		}
		if _, err := app.Bus.Emit(ctx, lifecycleEventName, hookPayload(inst.Name())); err != nil {
			return err
		}

		reportHookFailures(app, config.EventPostInit, app.Registry.ExecuteHooks(ctx, config.EventPostInit, hookPayload(inst.Name())))
	}

	for _, name := range app.Registry.List() {
		inst, err := app.Registry.Get(name)
		if err != nil {
			return err
		}
		if err := inst.Cleanup(ctx); err != nil {
			return fmt.Errorf("cleanup %q: %w", name, err)
		}
		if _, err := app.Bus.Emit(ctx, lifecycleEventName, hookPayload(name)); err != nil {
			return err
		}
	}

	app.Logger.Info(fmt.Sprintf("lifecycle pass complete: %d plugins", len(manifest.Plugins)))
	return nil
}

func hookPayload(plugin string) map[string]any {
	return map[string]any{"plugin": plugin}
}

func reportHookFailures(app *AppContext, event string, results []hooks.Result) {
	for _, result := range results {
		if result.Success {
			continue
		}
		app.Logger.WithPlugin(result.Plugin).Warn(fmt.Sprintf("%s hook failed: %s", event, result.Error))
	}
}
