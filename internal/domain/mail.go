package domain

import "strings"

// MailSettings describes the outgoing mail transport. Empty values are a
// valid "not configured" state rather than an error.
type MailSettings struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Secure      bool   `json:"secure"`
	Username    string `json:"username"`
	Password    string `json:"-"`
	FromName    string `json:"from_name"`
	FromAddress string `json:"from_address"`
}

// Configured reports whether every field needed to send mail is present.
func (s MailSettings) Configured() bool {
	return strings.TrimSpace(s.Host) != "" &&
		strings.TrimSpace(s.Username) != "" &&
		s.Password != "" &&
		strings.TrimSpace(s.FromAddress) != ""
}
