package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"glpi-notify/internal/config"
	"glpi-notify/internal/glpi"
	"glpi-notify/internal/logging"
	"glpi-notify/internal/run"
)

var defaultDays = []int{1, 2, 3, 4, 5, 6, 7, 14, 21, 28, 60, 90}

var (
	glpiServer    string
	glpiAppToken  string
	glpiUserToken string
	noVerifyCert  bool
	testing       bool
	days          []int
	oldestOnly    bool
)

var rootCmd = &cobra.Command{
	Use:   "glpi-notify <action>",
	Short: "GLPI expiration reporting: notifies technical owners of expiring licenses and checks live appliance certificates",
	Long: `glpi-notify queries a GLPI instance for expiring software licenses and
certificates and dispatches notification emails to the responsible
technical owners. Run it from cron, one action per invocation.

Actions:
  license_expire_check      mail owners of licenses expiring within the
                            configured horizons
  certificate_test_valid    probe the live certificate of every appliance
  certificate_test_expire   probe only certificates expiring within the
                            widest horizon`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runAction(args[0])
	},
}

func init() {
	rootCmd.Flags().StringVarP(&glpiServer, "glpi-server", "S", "", "the glpi server url (overrides GLPI_URL)")
	rootCmd.Flags().StringVarP(&glpiAppToken, "glpi-apptoken", "T", "", "the glpi app token (overrides GLPI_APPTOKEN)")
	rootCmd.Flags().StringVarP(&glpiUserToken, "glpi-usertoken", "U", "", "the glpi user token (overrides GLPI_USERTOKEN)")
	rootCmd.Flags().BoolVar(&noVerifyCert, "no-verify-cert", false, "do not verify the https cert of the glpi server")
	rootCmd.Flags().BoolVarP(&testing, "testing", "t", false, "do not send any mails during testing")
	rootCmd.Flags().IntSliceVarP(&days, "days", "d", defaultDays, "at what days before expiry to send notifications")
	rootCmd.Flags().BoolVar(&oldestOnly, "oldest-only", false, "run a single pass at the widest horizon only")
}

func runAction(action string) {
	// Flag overrides take effect by seeding the environment before the
	// config is loaded.
	if glpiServer != "" {
		os.Setenv("GLPI_URL", glpiServer)
	}
	if glpiAppToken != "" {
		os.Setenv("GLPI_APPTOKEN", glpiAppToken)
	}
	if glpiUserToken != "" {
		os.Setenv("GLPI_USERTOKEN", glpiUserToken)
	}
	if testing {
		os.Setenv("TESTING", "1")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if noVerifyCert {
		cfg.GLPI.VerifyCerts = false
	}

	prog := strings.TrimSuffix(filepath.Base(os.Args[0]), ".exe")
	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level, prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client, err := glpi.Connect(cfg, logger)
	if err != nil {
		logger.Errorf("GLPI connection failed: %v", err)
		os.Exit(101)
	}
	defer client.Close()

	runner := run.New(client, client.BaseURL(), cfg, logger)
	opts := run.Options{
		Action:     action,
		Days:       days,
		OldestOnly: oldestOnly,
		Today:      time.Now(),
	}
	if err := runner.Execute(opts); err != nil {
		logger.Errorf("Run failed: %v", err)
		os.Exit(1)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
