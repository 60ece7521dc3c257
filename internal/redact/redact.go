// Package redact strips credentials and infrastructure details from error
// text before it is logged. Mail transport errors are the main customer:
// SMTP servers echo AUTH exchanges, hostnames and recipient addresses back
// in their failure replies.
package redact

import (
	"log/slog"
	"regexp"
)

// Placeholders substituted for redacted fragments.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	JWTPlaceholder        = "[REDACTED_JWT]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	HostPlaceholder       = "[REDACTED_HOST]"
	PathPlaceholder       = "[REDACTED_PATH]"
	SQLPlaceholder        = "[REDACTED_SQL]"
	StackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	re          *regexp.Regexp
	replacement string
}

// rules run in order. Earlier rules consume fragments later rules would
// otherwise split, e.g. credentials inside a connection URL before its host.
var rules = []rule{
	{regexp.MustCompile(`(?:goroutine \d+ \[[^\]]*\]:|panic:)[\s\S]*`), StackPlaceholder},
	{regexp.MustCompile(`(?i)\b(postgres(?:ql)?|smtps?|mysql|redis)://[^\s/@]+@`), "${1}://" + CredentialPlaceholder + "@"},
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), JWTPlaceholder},
	{regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]{8,}`), "Bearer " + TokenPlaceholder},
	{regexp.MustCompile(`(?i)\bAUTH\s+(PLAIN|LOGIN|CRAM-MD5)\s+\S+`), "AUTH ${1} " + CredentialPlaceholder},
	{
		regexp.MustCompile(`(?i)\b([\w-]*(?:password|passwd|pwd|secret|api[_-]?key))(\s*[=:]\s*)['"]?[^'"&\s,;]+['"]?`),
		"${1}${2}" + CredentialPlaceholder,
	},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), EmailPlaceholder},
	{regexp.MustCompile(`\b(SELECT|INSERT INTO|UPDATE|DELETE FROM)\s[^;]*`), "${1} " + SQLPlaceholder},
	{regexp.MustCompile(`(?:/[\w.-]+){2,}`), PathPlaceholder},
	{
		regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}:\d{1,5}\b`),
		HostPlaceholder,
	},
	{regexp.MustCompile(`\b\d{1,3}(?:\.\d{1,3}){3}(?::\d{1,5})?\b`), HostPlaceholder},
}

// String returns s with every sensitive fragment replaced by a placeholder.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error redacts err's message. A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// ErrorAttr is the redacted "error" log attribute for err.
func ErrorAttr(err error) slog.Attr {
	return slog.String("error", Error(err))
}
