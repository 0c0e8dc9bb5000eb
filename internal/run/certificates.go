package run

import (
	"fmt"
	"strings"

	"glpi-notify/internal/expiry"
	"glpi-notify/internal/glpi"
	"glpi-notify/internal/jsonutil"
	"glpi-notify/internal/models"
)

// certificateTest walks the appliance inventory, probes the live
// certificate of every appliance a certificate is attached to, and prints
// the aggregated report as JSON. With filterExpire set only certificates
// expiring within the widest configured horizon are considered; otherwise
// every non-deleted certificate is.
func (r *Runner) certificateTest(opts Options, filterExpire bool) error {
	var future *string
	if filterExpire {
		schedule := expiry.NewSchedule(opts.Days, opts.Today)
		if len(schedule.Days) == 0 {
			r.logger.Errorf("No usable notification horizons in %v", opts.Days)
			return nil
		}
		f := schedule.Future[schedule.Oldest]
		future = &f
	}

	reports, err := r.collectCertificates(future)
	if err != nil {
		return err
	}

	out, err := jsonutil.Dump(reports)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, out)
	return nil
}

// collectCertificates groups appliance probes by certificate name. A
// failed probe becomes a status=false entry on the offending appliance;
// only inventory fetch failures end the run.
func (r *Runner) collectCertificates(future *string) ([]models.CertificateReport, error) {
	appliances, err := r.inv.GetAllItems("Appliance")
	if err != nil {
		return nil, err
	}
	r.logger.Infof("Fetched %d appliances", len(appliances))

	reports := []models.CertificateReport{}
	index := map[string]int{}

	for _, appliance := range appliances {
		applianceID, ok := asInt(appliance["id"])
		if !ok {
			continue
		}
		applianceName := strings.TrimSpace(asString(appliance["name"]))

		assocs, err := r.inv.GetSubItems("Appliance", applianceID, "Certificate_Item")
		if err != nil {
			return nil, err
		}

		for _, assoc := range assocs {
			certID, ok := asInt(assoc["certificates_id"])
			if !ok {
				r.logger.Debugf("Appliance %d association without numeric certificate id, skipping", applianceID)
				continue
			}

			cert, err := r.inv.GetItem("Certificate", certID)
			if err != nil {
				return nil, err
			}
			if truthy(cert["is_deleted"]) {
				continue
			}

			expire := asString(cert["date_expiration"])
			if future != nil && (expire == "" || expire > *future) {
				continue
			}

			certName := strings.TrimSpace(asString(cert["name"]))
			pos, seen := index[certName]
			if !seen {
				pos = len(reports)
				index[certName] = pos
				reports = append(reports, models.CertificateReport{
					CertName: certName,
					Cert:     cert,
				})
			}

			url, err := r.applianceURL(applianceName)
			if err != nil {
				return nil, err
			}
			result := r.probe(deref(url))
			reports[pos].Appliances = append(reports[pos].Appliances, models.ApplianceProbe{
				Appliance: models.Appliance{ID: applianceID, Name: applianceName},
				CertURL:   url,
				CertInfo:  result,
				Status:    result.Status,
			})
		}
	}
	return reports, nil
}

// applianceURL looks up the appliance's advertised address via the search
// engine. Nil when the appliance has none; a search failure is an
// inventory failure and ends the run.
func (r *Runner) applianceURL(name string) (*string, error) {
	rows, err := r.inv.Search("Appliance", []glpi.Criterion{
		{Field: 1, SearchType: "contains", Value: name},
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if addr, ok := rows[0]["PluginWebapplicationsAppliance.address"].(string); ok && addr != "" {
		return &addr, nil
	}
	return nil, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "0"
	default:
		return false
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
