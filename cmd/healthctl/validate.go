package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vladimiradmaev/health-records/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Check the configuration and print it with secrets masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "❌ Configuration is invalid:\n%v\n", err)
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Configuration is valid!")
		printConfig(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func printConfig(w io.Writer, c *config.Config) {
	fmt.Fprintln(w, "📋 Configuration:")
	fmt.Fprintf(w, "  - HTTP Addr: %s\n", c.HTTP.Addr)
	fmt.Fprintf(w, "  - Allowed Origins: %s\n", c.HTTP.AllowOrigins)
	fmt.Fprintf(w, "  - Telegram Token: %s\n", maskToken(c.TelegramToken))
	fmt.Fprintf(w, "  - Gemini API Key: %s (%s)\n", maskToken(c.AI.GeminiAPIKey), c.AI.GeminiModel)
	fmt.Fprintf(w, "  - OpenAI API Key: %s (%s)\n", maskToken(c.AI.OpenAIAPIKey), c.AI.OpenAIModel)
	fmt.Fprintf(w, "  - JWT Secret: %s\n", maskToken(c.Auth.JWTSecret))
	fmt.Fprintf(w, "  - Google Client ID: %s\n", maskToken(c.Auth.GoogleClientID))
	fmt.Fprintf(w, "  - Authorized Domains: %v\n", c.Auth.AuthorizedDomains)
	fmt.Fprintf(w, "  - DB: %s@%s:%s/%s\n", c.DB.User, c.DB.Host, c.DB.Port, c.DB.DBName)
	if c.Redis.Enabled() {
		fmt.Fprintf(w, "  - Redis: %s db=%d\n", c.Redis.Addr(), c.Redis.DB)
	} else {
		fmt.Fprintln(w, "  - Redis: <disabled>")
	}
	fmt.Fprintf(w, "  - AI Timeout: %s\n", c.Assist.AITimeout)
	fmt.Fprintf(w, "  - Session Idle Timeout: %s\n", c.Assist.SessionIdleTimeout)
	fmt.Fprintf(w, "  - Log Level: %v\n", c.Logger.Level)
	fmt.Fprintf(w, "  - Log Output: %s\n", c.Logger.OutputPath)
	fmt.Fprintf(w, "  - Log Format: %s\n", c.Logger.Format)
}

func maskToken(token string) string {
	if token == "" {
		return "<not set>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
