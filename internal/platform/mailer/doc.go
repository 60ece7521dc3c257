// Package mailer delivers rendered notifications over SMTP.
//
// The Sender in this package implements notify.Sender. Transport settings
// are passed per call, so changes to the stored mail settings take effect
// on the next dispatch without a restart.
package mailer
