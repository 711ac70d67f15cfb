package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdfwatch/pdfwatch/internal/config"
	"github.com/pdfwatch/pdfwatch/internal/llm"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Anthropic API credential",
		Long: `Store or inspect the Anthropic API key used for classification.

The key is kept in the system keyring when one is available, otherwise
in a mode-0600 credential file under the config directory. The
ANTHROPIC_API_KEY environment variable always takes precedence.`,
	}

	cmd.AddCommand(authSetCmd())
	cmd.AddCommand(authStatusCmd())

	return cmd
}

func authSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the Anthropic API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, _ := cmd.Flags().GetString("key")
			if key == "" {
				fmt.Fprint(os.Stderr, "Anthropic API key: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read key: %w", err)
				}
				key = strings.TrimSpace(line)
			}
			if key == "" {
				return fmt.Errorf("no key provided")
			}

			configDir, err := config.Dir()
			if err != nil {
				return err
			}
			location, err := llm.StoreAPIKey(configDir, key)
			if err != nil {
				return fmt.Errorf("failed to store key: %w", err)
			}

			slog.Info("✅ API key stored", "location", location)
			return nil
		},
	}

	cmd.Flags().String("key", "", "API key (prompted for when omitted)")

	return cmd
}

func authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether an API key is configured",
		RunE: func(_ *cobra.Command, _ []string) error {
			configDir, err := config.Dir()
			if err != nil {
				return err
			}

			if _, err := llm.LoadAPIKey(configDir); err != nil {
				slog.Warn("No API key configured. Run 'pdfwatch auth set'")
				return nil
			}
			slog.Info("✅ API key is configured")
			return nil
		},
	}
}
