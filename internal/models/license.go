package models

// License is the normalized view of a GLPI SoftwareLicense record.
// GLPI marks "no value" with 0, "" or null depending on the field; the
// normalizer collapses all of those to a nil pointer, so a nil field here
// always means absent.
type License struct {
	ID              int                `json:"id"`
	Name            *string            `json:"name"`
	TechUser        *string            `json:"tech_user"`
	TechUserEmail   *string            `json:"tech_user_email"`
	Software        *string            `json:"software"`
	State           *string            `json:"state"`
	Expire          *string            `json:"expire"`
	Comment         *string            `json:"comment"`
	TechGroup       *string            `json:"tech_group"`
	TechGroupEmails map[string]*string `json:"tech_group_emails"`
}
