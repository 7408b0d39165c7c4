package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/oggyb/smshub/internal/config"
	"github.com/oggyb/smshub/internal/smshub"
	"github.com/oggyb/smshub/internal/transport"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	apiKey    string
	endpoint  string
	transport string
	timeout   time.Duration
	asJSON    bool
}

func newRootCmd() *cobra.Command {
	cfg := config.New()
	g := &globals{}

	root := &cobra.Command{
		Use:           "smshub",
		Short:         "SMSHub handler API client",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `Talk to the SMSHub handler API from the shell.

Settings default to SMSHUB_API_KEY, SMSHUB_ENDPOINT, SMSHUB_TRANSPORT and
SMSHUB_TIMEOUT (a .env file is read if present).

Examples:
  smshub balance
  smshub order --service tg --country 0
  smshub status 123456
  smshub set-status 123456 cancel`,
	}

	root.PersistentFlags().StringVar(&g.apiKey, "api-key", cfg.SMSHub.APIKey, "API key")
	root.PersistentFlags().StringVar(&g.endpoint, "endpoint", cfg.SMSHub.Endpoint, "Handler URL")
	root.PersistentFlags().StringVar(&g.transport, "transport", cfg.SMSHub.Transport, "HTTP transport (http|fasthttp)")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", cfg.SMSHub.Timeout, "Request timeout")
	root.PersistentFlags().BoolVar(&g.asJSON, "json", false, "Print results as JSON")

	root.AddCommand(
		balanceCmd(g),
		numbersCmd(g),
		pricesCmd(g),
		orderCmd(g),
		statusCmd(g),
		setStatusCmd(g),
	)
	return root
}

func (g *globals) client() (*smshub.Client, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("api key is required (--api-key or SMSHUB_API_KEY)")
	}
	cfg := &config.Config{}
	cfg.SMSHub.APIKey = g.apiKey
	cfg.SMSHub.Endpoint = g.endpoint
	cfg.SMSHub.Transport = g.transport
	cfg.SMSHub.Timeout = g.timeout
	return transport.NewProvider(cfg)
}

func (g *globals) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), g.timeout)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func balanceCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the account balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			ctx, cancel := g.context(cmd)
			defer cancel()

			bal, err := c.GetBalance(ctx)
			if err != nil {
				return err
			}
			if g.asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]string{"balance": bal.String()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), bal.StringFixed(2))
			return nil
		},
	}
}

func numbersCmd(g *globals) *cobra.Command {
	var country, operator string

	cmd := &cobra.Command{
		Use:   "numbers",
		Short: "Show how many numbers are available per service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			ctx, cancel := g.context(cmd)
			defer cancel()

			doc, err := c.GetNumbersStatus(ctx, country, operator)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "Country code")
	cmd.Flags().StringVar(&operator, "operator", "", "Operator")
	return cmd
}

func pricesCmd(g *globals) *cobra.Command {
	var service, country string

	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Show the price table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			ctx, cancel := g.context(cmd)
			defer cancel()

			table, err := c.GetPrices(ctx, service, country)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), table)
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "Service code")
	cmd.Flags().StringVar(&country, "country", "", "Country code")
	return cmd
}

func orderCmd(g *globals) *cobra.Command {
	var country, operator, service string

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Reserve a number for a service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			ctx, cancel := g.context(cmd)
			defer cancel()

			num, err := c.GetNumber(ctx, country, operator, service)
			if err != nil {
				return err
			}
			if g.asJSON {
				return printJSON(cmd.OutOrStdout(), num)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", num.ID, num.Number)
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "Service code")
	cmd.Flags().StringVar(&country, "country", "0", "Country code")
	cmd.Flags().StringVar(&operator, "operator", "any", "Operator")
	_ = cmd.MarkFlagRequired("service")
	return cmd
}

func statusCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id>",
		Short: "Show the status of an activation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			ctx, cancel := g.context(cmd)
			defer cancel()

			report, err := c.CheckStatus(ctx, args[0])
			if err != nil {
				return err
			}
			if g.asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"status": string(report.Status),
					"code":   report.Code,
				})
			}
			if report.Code != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", report.Status, report.Code)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Status)
			return nil
		},
	}
}

func setStatusCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <ready|resend|complete|cancel>",
		Short: "Change the status of an activation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := smshub.ParseStatusRequest(args[1])
			if err != nil {
				return err
			}
			c, err := g.client()
			if err != nil {
				return err
			}
			ctx, cancel := g.context(cmd)
			defer cancel()

			if _, err := c.SetStatus(ctx, args[0], req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], req.Name())
			return nil
		},
	}
}
