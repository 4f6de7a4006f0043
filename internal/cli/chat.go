package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opsline/opsline/internal/app"
	"github.com/opsline/opsline/internal/config"
	"github.com/opsline/opsline/internal/gateway"
)

func newChatCommand(logger *slog.Logger) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to opsline in the terminal",
		Long:  "One-shot with a message argument, or an interactive loop without one. Uses the in-process pipeline, no server required.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			runtime, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if message == "" && len(args) > 0 {
				message = strings.Join(args, " ")
			}
			if strings.TrimSpace(message) != "" {
				output := runtime.Gateway().HandleMessage(ctx, gateway.MessageInput{Message: message})
				printOutput(cmd, output)
				return nil
			}
			return runLoop(ctx, cmd, runtime.Gateway())
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "send one message and exit")
	return cmd
}

func runLoop(ctx context.Context, cmd *cobra.Command, service *gateway.Service) error {
	cmd.Println("opsline chat - type a message, /clear to reset the session, /quit to exit")
	scanner := bufio.NewScanner(os.Stdin)
	sessionID := ""
	for {
		fmt.Fprint(cmd.OutOrStdout(), "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/clear":
			if sessionID != "" {
				service.ClearSession(sessionID)
				sessionID = ""
			}
			cmd.Println("session cleared")
			continue
		}

		output := service.HandleMessage(ctx, gateway.MessageInput{SessionID: sessionID, Message: line})
		sessionID = output.SessionID
		printOutput(cmd, output)
	}
}

func printOutput(cmd *cobra.Command, output gateway.MessageOutput) {
	cmd.Println(output.Text)
	if len(output.Records) > 0 {
		for _, record := range output.Records {
			cmd.Printf("  %s [%s/%s] %s (%s)\n",
				record.ID, record.Status, record.Priority, record.Title, record.Assignee)
		}
	}
	if len(output.SuggestedActions) > 0 {
		cmd.Println("try: " + strings.Join(output.SuggestedActions, " | "))
	}
}
