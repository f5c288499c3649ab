package chat

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"aichat/internal/crypto"
	"aichat/internal/metrics"
	"aichat/internal/ui"
)

// LineReader reads one line of user input. prompt.Prompter satisfies it.
type LineReader interface {
	Input(label string) (string, error)
}

// Session drives the interactive loop: read a line, send it, print the reply.
// Every message is sent standalone; no history is kept.
type Session struct {
	Sender   Sender
	Input    LineReader
	Out      io.Writer
	Theme    ui.Theme
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
	Provider string
	Model    string

	// Secrets are scrubbed from error text before it is printed.
	Secrets []string
}

// Run returns nil when the user quits and the input error otherwise. Once
// ctx is done the loop stops with ctx.Err(); a request already in flight is
// never cancelled and its reply is still printed.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.Out, s.Theme.Banner.Render(fmt.Sprintf("AI Chat started with %s using %s", s.Provider, s.Model)))
	fmt.Fprintln(s.Out, s.Theme.Hint.Render("Type 'quit' or 'exit' to end the conversation"))
	fmt.Fprintln(s.Out)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.Input.Input("You")
		if err != nil {
			return err
		}

		cmd := strings.ToLower(strings.TrimSpace(line))
		if cmd == "quit" || cmd == "exit" {
			fmt.Fprintln(s.Out, s.Theme.Success.Render("Goodbye!"))
			return nil
		}
		if cmd == "" {
			continue
		}
		if s.Metrics != nil {
			s.Metrics.SessionMessages.Inc()
		}

		reply, err := s.Sender.Send(context.WithoutCancel(ctx), line)
		if err != nil {
			msg := crypto.Redact(err.Error(), s.Secrets...)
			s.Logger.Warn().Str("provider", s.Provider).Str("error", msg).Msg("chat message failed")
			fmt.Fprintln(s.Out, s.Theme.Error.Render("Error: "+msg))
			fmt.Fprintln(s.Out)
			continue
		}
		fmt.Fprintln(s.Out, s.Theme.Reply.Render("AI: "+reply))
		fmt.Fprintln(s.Out)
	}
}
