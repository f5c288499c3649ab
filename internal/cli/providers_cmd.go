package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aichat/internal/crypto"
	"aichat/internal/ui"
)

func newProvidersCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List configured providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, closeStore, err := app.OpenStore(ctx, app.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			cfg, err := store.Load(ctx)
			if err != nil {
				return err
			}
			if cfg.Empty() {
				fmt.Fprintln(app.Out, app.Theme.Muted.Render("No providers configured. Run 'ai-chat config' first."))
				return nil
			}

			rows := make([][]string, 0, len(cfg.Providers))
			for _, name := range cfg.Names() {
				p := cfg.Providers[name]
				rows = append(rows, []string{name, p.DefaultModel, strings.Join(p.Models, ", "), crypto.Mask(p.APIKey)})
			}
			fmt.Fprintln(app.Out, ui.Table([]string{"PROVIDER", "DEFAULT MODEL", "MODELS", "API KEY"}, rows))
			return nil
		},
	}
}
