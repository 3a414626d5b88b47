package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check the session store and the research backend",
	Long: `Check the health of research-session by verifying:
  • Configuration
  • Session store access
  • Session count
  • Research backend reachability

This command is useful for debugging setup issues, especially in CI/CD environments.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 Research Session Health Check"))
		fmt.Fprintln(out)

		// Step 1: Configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Invalid configuration:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if healthcheckVerbose {
			fmt.Fprintf(out, "   Backend URL: %s\n", cfg.APIURL)
			fmt.Fprintf(out, "   News URL: %s\n", cfg.ResolvedNewsURL())
			fmt.Fprintf(out, "   Timeout: %s\n", cfg.Timeout)
		}
		fmt.Fprintln(out)

		// Step 2: Session store
		fmt.Fprintln(out, infoStyle.Render("Step 2: Opening session store..."))
		a, err := openApp()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to open session store:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		defer a.Close()
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ %s store opened", a.cfg.Backend)))
		if healthcheckVerbose {
			fmt.Fprintf(out, "   Data directory: %s\n", a.paths.DataDir)
			fmt.Fprintf(out, "   Cache directory: %s\n", a.paths.CacheDir)
		}
		fmt.Fprintln(out)

		// Step 3: Sessions
		fmt.Fprintln(out, infoStyle.Render("Step 3: Loading sessions..."))
		sessionCount := a.store.Len()
		if sessionCount > 0 {
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Found %d session(s)", sessionCount)))
			if healthcheckVerbose {
				for i, session := range a.store.Sessions() {
					if i == 5 {
						fmt.Fprintf(out, "   ... and %d more\n", sessionCount-5)
						break
					}
					fmt.Fprintf(out, "   [%d] %s (ID: %s)\n", i+1, session.Title, shortID(session.ID))
				}
			}
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  No sessions found"))
		}
		fmt.Fprintln(out)

		// Step 4: Backend
		fmt.Fprintln(out, infoStyle.Render("Step 4: Contacting research backend..."))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		status, healthErr := a.client.Health(ctx)
		if healthErr != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Backend unreachable:"), healthErr)
		} else {
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Backend reachable (%s)", status.Status)))
			if healthcheckVerbose && status.Message != "" {
				fmt.Fprintf(out, "   %s\n", status.Message)
			}
		}
		fmt.Fprintln(out)

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		if healthErr != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			fmt.Fprintf(out, "   • Start the backend at %s or set RESEARCH_API_URL\n", a.cfg.APIURL)
			return fmt.Errorf("health check failed: backend unreachable: %w", healthErr)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("   • Sessions: %d found", sessionCount)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckVerbose, "details", false, "Show detailed diagnostic information")
}
