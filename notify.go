package vwg

import (
	"fmt"
	"io"
	"net/smtp"
	"os"
	"strings"
	"time"
)

const DefaultSubject = "New Vaccine Appointments"

var reportBanner = strings.Repeat("=", 10)
var recordBanner = strings.Repeat("+", 10)

// NotifyError covers delivery failures at the mail boundary. The watch
// loop logs these and moves on, the records are not re-queued.
type NotifyError struct {
	Cause string
	Err   error
}

func (e *NotifyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Cause, e.Err)
	}

	return e.Cause
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

// Notifier delivers a batch of newly available records to the user.
// Callers never invoke it with an empty batch.
type Notifier interface {
	Notify(records []AvailabilityRecord) error
}

// RenderReport builds the full report text: timestamped preamble, then
// one banner-framed block per record in the diff engine's order.
func RenderReport(records []AvailabilityRecord, now time.Time) string {
	sb := strings.Builder{}

	sb.WriteString(fmt.Sprintf("%s%s", reportBanner, NEWLINE))
	sb.WriteString(fmt.Sprintf("Report as of %s%s", now.Format(time.RFC1123), NEWLINE))
	sb.WriteString(fmt.Sprintf("%s%s%s", reportBanner, NEWLINE, NEWLINE))

	for _, record := range records {
		sb.WriteString(fmt.Sprintf("%s%s", recordBanner, NEWLINE))
		sb.WriteString(record.Render())
		sb.WriteString(fmt.Sprintf("%s%s", recordBanner, NEWLINE))
	}

	return sb.String()
}

// StdoutNotifier writes the report to an output stream. A write
// failure here is fatal, there is no degraded mode for "cannot print".
type StdoutNotifier struct {
	Out io.Writer
}

func NewStdoutNotifier() *StdoutNotifier {
	return &StdoutNotifier{Out: os.Stdout}
}

func (n *StdoutNotifier) Notify(records []AvailabilityRecord) error {
	report := RenderReport(records, time.Now())

	if _, err := n.Out.Write([]byte(report)); err != nil {
		return err
	}

	return nil
}

// MailTransport is the boundary to whatever actually moves the
// message. Injected so the notifier can be tested without a relay.
type MailTransport interface {
	Send(from string, to string, subject string, body string) error
}

// SMTPTransport talks to a plain smtp relay. Auth is optional, a
// relay on localhost usually needs none.
type SMTPTransport struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (t *SMTPTransport) Send(from string, to string, subject string, body string) error {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("\r\n")
	sb.WriteString(body)

	var auth smtp.Auth
	if len(t.Username) > 0 {
		auth = smtp.PlainAuth("", t.Username, t.Password, t.Host)
	}

	return smtp.SendMail(fmt.Sprintf("%s:%d", t.Host, t.Port), auth, from, []string{to}, []byte(sb.String()))
}

// EmailNotifier composes one message enumerating the new records and
// hands it to the transport.
type EmailNotifier struct {
	Transport MailTransport
	From      string
	To        string
}

func NewEmailNotifier(transport MailTransport, from string, to string) *EmailNotifier {
	return &EmailNotifier{
		Transport: transport,
		From:      from,
		To:        to,
	}
}

func (n *EmailNotifier) Notify(records []AvailabilityRecord) error {
	body := RenderReport(records, time.Now())

	Log.Infof("Emailing %d new location(s) to %s", len(records), n.To)

	if err := n.Transport.Send(n.From, n.To, DefaultSubject, body); err != nil {
		return &NotifyError{
			Cause: fmt.Sprintf("failed to send email from %s to %s", n.From, n.To),
			Err:   err,
		}
	}

	return nil
}
