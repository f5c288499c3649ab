package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"aichat/internal/credentials"
	"aichat/internal/providers"
)

func newConfigCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Configure API credentials for a provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer app.flushMetrics()
			return app.runConfig(cmd)
		},
	}
}

func (a *App) runConfig(cmd *cobra.Command) error {
	ctx := cmd.Context()
	store, closeStore, err := a.OpenStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	current, err := store.Load(ctx)
	if err != nil {
		return err
	}

	kinds := providers.Kinds()
	labels := make([]string, len(kinds))
	for i, k := range kinds {
		labels[i] = k.Label()
	}
	idx, err := a.Prompter.Select("Select provider", labels, 0)
	if err != nil {
		return err
	}
	kind := kinds[idx]

	apiKey, err := a.Prompter.Secret("Enter API key")
	if err != nil {
		return err
	}

	models := kind.Models()
	cursor := 0
	if existing, err := current.Lookup(kind.String()); err == nil {
		cursor = credentials.Provider{DefaultModel: existing.DefaultModel, Models: models}.DefaultModelIndex()
	}
	midx, err := a.Prompter.Select("Select default model", models, cursor)
	if err != nil {
		return err
	}

	current.Set(kind.String(), credentials.Provider{
		APIKey:       apiKey,
		DefaultModel: models[midx],
		Models:       models,
	})
	if err := store.Save(ctx, current); err != nil {
		return err
	}
	a.Metrics.StoreSaves.Inc()
	a.logger.Info().Str("provider", kind.String()).Str("model", models[midx]).Msg("provider configured")

	fmt.Fprintln(a.Out, a.Theme.Success.Render("Configuration saved!"))
	return nil
}
