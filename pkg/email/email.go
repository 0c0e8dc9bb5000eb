package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Send hands a plaintext message to the SMTP relay. The relay is an
// internal unauthenticated host, so no auth is attempted.
func Send(host string, port int, from string, to []string, subject, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}
	for _, rcpt := range to {
		if !strings.Contains(rcpt, "@") {
			return fmt.Errorf("invalid email address: %s", rcpt)
		}
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		from, strings.Join(to, ", "), subject, body))
	addr := fmt.Sprintf("%s:%d", host, port)
	return smtp.SendMail(addr, nil, from, to, msg)
}
