package notify

import (
	"fmt"
	"sort"

	"glpi-notify/internal/jsonutil"
	"glpi-notify/internal/models"
)

// BuildRecipients determines who gets notified for a license: the resolved
// technical user first, then the group members in login order so the list
// is deterministic. When nothing resolves the administrative fallback is
// the sole recipient, so the result is never empty.
func BuildRecipients(lic models.License, adminFallback string) []string {
	seen := map[string]bool{}
	to := []string{}

	add := func(email string) {
		if email == "" || seen[email] {
			return
		}
		seen[email] = true
		to = append(to, email)
	}

	if lic.TechUserEmail != nil {
		add(*lic.TechUserEmail)
	}

	logins := make([]string, 0, len(lic.TechGroupEmails))
	for login := range lic.TechGroupEmails {
		logins = append(logins, login)
	}
	sort.Strings(logins)
	for _, login := range logins {
		if email := lic.TechGroupEmails[login]; email != nil {
			add(*email)
		}
	}

	if len(to) == 0 {
		to = append(to, adminFallback)
	}
	return to
}

// RenderMessage renders the subject and plaintext body for an expiring
// license. The body carries a deep link into GLPI and a pretty-printed
// dump of the full record for audit purposes.
func RenderMessage(lic models.License, baseURL string) (models.Message, error) {
	dump, err := jsonutil.Dump(lic)
	if err != nil {
		return models.Message{}, fmt.Errorf("render license %d: %w", lic.ID, err)
	}

	name := deref(lic.Name)
	expire := deref(lic.Expire)

	body := fmt.Sprintf(`
Licence %s will expire soon: %s

%s/front/softwarelicense.form.php?id=%d

%s

`, name, expire, baseURL, lic.ID, dump)

	return models.Message{
		Subject: fmt.Sprintf("[glpi] licence '%s' will expire %s", name, expire),
		Body:    body,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
