package run

import (
	"context"
	"io"
	"os"
	"time"

	"glpi-notify/internal/certcheck"
	"glpi-notify/internal/config"
	"glpi-notify/internal/glpi"
	"glpi-notify/internal/logging"
	"glpi-notify/internal/models"
	"glpi-notify/internal/providers"
)

// Action names accepted on the command line.
const (
	ActionLicenseExpireCheck = "license_expire_check"
	ActionCertificateValid   = "certificate_test_valid"
	ActionCertificateExpire  = "certificate_test_expire"
)

// Options carries the per-invocation parameters of a run.
type Options struct {
	Action     string
	Days       []int
	OldestOnly bool
	Today      time.Time
}

// Runner composes the inventory adapter, contact resolution, filtering and
// dispatch for one batch invocation. It holds no state across runs.
type Runner struct {
	inv      glpi.Inventory
	baseURL  string
	cfg      config.Config
	logger   *logging.Logger
	out      io.Writer
	probe    func(endpoint string) models.ProbeResult
	dispatch func(msg models.Message) error
}

// New builds a Runner printing reports to stdout and dispatching over the
// configured channels.
func New(inv glpi.Inventory, baseURL string, cfg config.Config, logger *logging.Logger) *Runner {
	r := &Runner{
		inv:     inv,
		baseURL: baseURL,
		cfg:     cfg,
		logger:  logger,
		out:     os.Stdout,
		probe:   certcheck.Probe,
	}
	r.dispatch = func(msg models.Message) error {
		if err := providers.SendEmail(msg, cfg, logger); err != nil {
			return err
		}
		// Telegram is a best-effort secondary channel; a failure there
		// never aborts the run.
		if cfg.TelegramEnabled() {
			if err := providers.SendTelegram(context.Background(), msg, cfg, logger); err != nil {
				logger.Errorf("Telegram dispatch failed: %v", err)
			}
		}
		return nil
	}
	return r
}

// Execute runs the selected action. An unknown action is a configuration
// error: it is reported and the process exits cleanly without doing
// anything.
func (r *Runner) Execute(opts Options) error {
	switch opts.Action {
	case ActionLicenseExpireCheck:
		return r.licenseExpireCheck(opts)
	case ActionCertificateValid:
		return r.certificateTest(opts, false)
	case ActionCertificateExpire:
		return r.certificateTest(opts, true)
	default:
		r.logger.Errorf("Unknown action %q", opts.Action)
		return nil
	}
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	default:
		return 0, false
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
