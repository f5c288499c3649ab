package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aichat/internal/chat"
	"aichat/internal/credentials"
	"aichat/internal/prompt"
)

func newChatCommand(app *App) *cobra.Command {
	var provider, model string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer app.flushMetrics()
			return app.runChat(cmd, provider, model)
		},
	}
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "configured provider to chat with")
	cmd.Flags().StringVarP(&model, "model", "m", "", "model to use")
	return cmd
}

func (a *App) runChat(cmd *cobra.Command, providerName, model string) error {
	ctx := cmd.Context()
	store, closeStore, err := a.OpenStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	cfg, err := store.Load(ctx)
	if err != nil {
		return err
	}

	// Stored names are the lower-case kind identifiers; flag input is folded
	// to match them.
	providerName = strings.ToLower(strings.TrimSpace(providerName))
	if providerName == "" {
		if cfg.Empty() {
			return credentials.ErrNoProvidersConfigured
		}
		names := cfg.Names()
		idx, err := a.Prompter.Select("Select provider", names, 0)
		if err != nil {
			return err
		}
		providerName = names[idx]
	}

	p, err := cfg.Lookup(providerName)
	if err != nil {
		return err
	}

	if model == "" {
		switch {
		case len(p.Models) > 0:
			idx, err := a.Prompter.Select("Select model", p.Models, p.DefaultModelIndex())
			if err != nil {
				return err
			}
			model = p.Models[idx]
		case p.DefaultModel != "":
			model = p.DefaultModel
		default:
			return fmt.Errorf("provider %q has no models configured, pass --model", providerName)
		}
	}

	a.logger.Debug().Str("provider", providerName).Str("model", model).Msg("starting chat session")
	session := &chat.Session{
		Sender:   a.NewSender(a.cfg, providerName, p.APIKey, model),
		Input:    a.Prompter,
		Out:      a.Out,
		Theme:    *a.Theme,
		Logger:   a.logger,
		Metrics:  a.Metrics,
		Provider: providerName,
		Model:    model,
		Secrets:  []string{p.APIKey},
	}
	if err := session.Run(ctx); err != nil {
		if errors.Is(err, prompt.ErrAborted) || errors.Is(err, context.Canceled) {
			fmt.Fprintln(a.Out, a.Theme.Success.Render("Goodbye!"))
			return nil
		}
		return err
	}
	return nil
}
