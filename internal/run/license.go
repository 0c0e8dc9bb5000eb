package run

import (
	"fmt"

	"glpi-notify/internal/contacts"
	"glpi-notify/internal/expiry"
	"glpi-notify/internal/notify"
)

// licenseExpireCheck fetches the license inventory once and runs one filter
// pass per configured horizon, smallest first. A license notified in an
// earlier pass of the same run is skipped in later ones, so each expiring
// license produces exactly one notification per run.
func (r *Runner) licenseExpireCheck(opts Options) error {
	schedule := expiry.NewSchedule(opts.Days, opts.Today)
	if len(schedule.Days) == 0 {
		r.logger.Errorf("No usable notification horizons in %v", opts.Days)
		return nil
	}

	cache, err := contacts.NewCache(r.inv, r.logger)
	if err != nil {
		return err
	}

	items, err := r.inv.GetAllItems("SoftwareLicense")
	if err != nil {
		return err
	}
	r.logger.Infof("Fetched %d licenses", len(items))

	days := schedule.Days
	if opts.OldestOnly {
		days = []int{schedule.Oldest}
	}

	notified := map[int]bool{}
	for _, day := range days {
		future := schedule.Future[day]
		for _, lic := range expiry.SelectExpiring(items, future) {
			if notified[lic.ID] {
				continue
			}
			notified[lic.ID] = true

			lic.TechUserEmail = cache.ResolveUserEmail(lic.TechUser)
			emails, err := cache.ResolveGroupEmails(lic.TechGroup)
			if err != nil {
				return err
			}
			lic.TechGroupEmails = emails

			msg, err := notify.RenderMessage(lic, r.baseURL)
			if err != nil {
				return err
			}
			msg.From = r.cfg.Mail.From
			msg.To = notify.BuildRecipients(lic, r.cfg.Mail.AdminEmail)

			if err := r.dispatch(msg); err != nil {
				return fmt.Errorf("license %d: %w", lic.ID, err)
			}
		}
	}

	r.logger.Infof("License expiry check done: %d notified", len(notified))
	return nil
}
