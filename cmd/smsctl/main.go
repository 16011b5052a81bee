// smsctl es la CLI de operación del bridge: envía SMS salientes (con callback de
// estado hacia /sms/callback), consulta el log de estados, firma requests de
// prueba para el webhook y emite tokens para /query.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sms-bridge/internal/config"
	"sms-bridge/internal/db"
	"sms-bridge/internal/domain"
	"sms-bridge/internal/repository"
	"sms-bridge/internal/service"
	"sms-bridge/internal/telephony"
)

var logger *zap.Logger

func main() {
	_ = godotenv.Load()

	logger = zap.NewExample()
	defer logger.Sync()

	root := &cobra.Command{
		Use:           "smsctl",
		Short:         "Operator tool for the SMS bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(sendCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(signCmd())
	root.AddCommand(tokenCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func sendCmd() *cobra.Command {
	var (
		to       string
		body     string
		callback string
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send an outbound SMS through the Twilio REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadCLIConfig()
			if err != nil {
				return err
			}
			sender, err := telephony.NewRESTSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
			if err != nil {
				return fmt.Errorf("%w (set TWILIO_FROM_NUMBER)", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			sid, err := sender.Send(ctx, domain.OutboundMessage{To: to, Body: body, StatusCallback: callback})
			if err != nil {
				return err
			}
			logger.Info("message queued", zap.String("message_sid", sid), zap.String("to", to))
			fmt.Println(sid)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "destination number in E.164 format")
	cmd.Flags().StringVar(&body, "body", "", "message text")
	cmd.Flags().StringVar(&callback, "callback", "", "status callback URL, e.g. https://host/sms/callback")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <MessageSid>",
		Short: "Show the last delivery status recorded for a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadCLIConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required to read delivery statuses")
			}

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer pool.Close()

			svc := service.NewStatusService(repository.NewPgStatusRepository(pool))
			st, err := svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		},
	}
}

func signCmd() *cobra.Command {
	var (
		params []string
		token  string
	)
	cmd := &cobra.Command{
		Use:   "sign <url>",
		Short: "Compute X-Twilio-Signature for a webhook URL and form params (key=value)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(token) == "" {
				return errors.New("auth token is required (--token or TWILIO_AUTH_TOKEN)")
			}
			form := url.Values{}
			for _, p := range params {
				k, v, ok := strings.Cut(p, "=")
				if !ok || k == "" {
					return fmt.Errorf("param %q: expected key=value", p)
				}
				form.Add(k, v)
			}
			fmt.Fprintln(cmd.OutOrStdout(), telephony.Sign(token, args[0], telephony.FormParams(form)))
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "form param as key=value (repeatable)")
	cmd.Flags().StringVar(&token, "token", os.Getenv("TWILIO_AUTH_TOKEN"), "Twilio auth token (defaults to TWILIO_AUTH_TOKEN)")
	return cmd
}

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue a bearer token for the /query endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadQueryAuthConfig()
			if err != nil {
				return err
			}
			token, err := service.NewQueryTokenService(cfg.JWTSecret, cfg.TokenTTL).Issue(args[0])
			if err != nil {
				return err
			}
			logger.Info("query token issued", zap.String("subject", args[0]), zap.Duration("ttl", cfg.TokenTTL))
			fmt.Println(token)
			return nil
		},
	}
}
