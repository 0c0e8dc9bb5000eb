package models

// Appliance identifies a GLPI appliance a certificate is attached to.
type Appliance struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ProbeResult is the outcome of one live TLS probe against an appliance
// URL. On failure Status is false and Expire carries the reason as an
// "Error: ..." string; probe errors never propagate past this value.
type ProbeResult struct {
	Status      bool     `json:"status"`
	Subject     string   `json:"subject,omitempty"`
	Issuer      string   `json:"issuer,omitempty"`
	Serial      string   `json:"serial,omitempty"`
	CommonNames []string `json:"common_names,omitempty"`
	SANNames    []string `json:"san_names,omitempty"`
	Expire      string   `json:"expire"`
}

// ApplianceProbe pairs an appliance with the probe result for its
// advertised URL. CertURL is nil when the appliance search returned no
// address.
type ApplianceProbe struct {
	Appliance Appliance   `json:"appliance"`
	CertURL   *string     `json:"cert_url"`
	CertInfo  ProbeResult `json:"cert_info"`
	Status    bool        `json:"status"`
}

// CertificateReport aggregates all appliance probes for one certificate.
type CertificateReport struct {
	CertName   string           `json:"cert_name"`
	Cert       map[string]any   `json:"cert"`
	Appliances []ApplianceProbe `json:"appliances"`
}
