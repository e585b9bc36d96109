package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/landing-checkout/internal/checkout"
)

var (
	apiURL  string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Command line client for the checkout API",
	Long: `Drive the checkout flow from a terminal.

Available subcommands:
  rules  - Show the validation rules and unit price served by the API
  submit - Validate and place an order
  pin    - Check a postal code against the rules`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("CHECKOUT_API", "http://localhost:3000"), "base URL of the checkout API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "request timeout")

	rootCmd.AddCommand(rulesCmd, submitCmd, pinCmd)
}

func newClient() *checkout.Client {
	return checkout.NewClient(apiURL, nil)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
