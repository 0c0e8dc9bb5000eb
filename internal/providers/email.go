package providers

import (
	"fmt"

	"glpi-notify/internal/config"
	"glpi-notify/internal/logging"
	"glpi-notify/internal/models"
	"glpi-notify/pkg/email"
)

// SendEmail dispatches a rendered Message over SMTP. In testing mode the
// message is rendered into the log in full and never transmitted.
func SendEmail(msg models.Message, cfg config.Config, logger *logging.Logger) error {
	if cfg.Testing {
		logger.Infof("TESTING, mail not sent:\nFrom: %s\nTo: %v\nSubject: %s\n%s",
			msg.From, msg.To, msg.Subject, msg.Body)
		return nil
	}

	if err := email.Send(cfg.Mail.Host, cfg.Mail.Port, msg.From, msg.To, msg.Subject, msg.Body); err != nil {
		return fmt.Errorf("send mail to %v: %w", msg.To, err)
	}
	logger.Infof("Mail sent: %q to %v", msg.Subject, msg.To)
	return nil
}
