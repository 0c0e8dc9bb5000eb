package models

// Message is a rendered notification ready for dispatch. To is never empty;
// the assembler falls back to the administrative contact when no owner
// email resolves.
type Message struct {
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	From    string   `json:"from"`
	To      []string `json:"to"`
}
