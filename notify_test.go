package vwg

//unit tests

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"
)

type fakeTransport struct {
	from    string
	to      string
	subject string
	body    string
	sends   int
	err     error
}

func (t *fakeTransport) Send(from string, to string, subject string, body string) error {
	t.from = from
	t.to = to
	t.subject = subject
	t.body = body
	t.sends++

	return t.err
}

type failingWriter struct{}

func (w *failingWriter) Write(p []byte) (int, error) {
	return 0, fmt.Errorf("stream is gone")
}

func TestRenderReport(t *testing.T) {
	records := []AvailabilityRecord{
		makeRecord("site1", "00001", true),
		makeRecord("site2", "00002", true),
	}

	now := time.Date(2021, 4, 1, 12, 0, 0, 0, time.UTC)
	report := RenderReport(records, now)

	if !strings.Contains(report, "Report as of "+now.Format(time.RFC1123)) {
		t.Errorf("Expected report preamble with timestamp, got %s", report)
		return
	}
	if !strings.Contains(report, strings.Repeat("=", 10)) {
		t.Errorf("Expected report banner, got %s", report)
		return
	}
	if strings.Count(report, strings.Repeat("+", 10)) != 4 {
		t.Errorf("Expected 2 banner-framed record blocks, got %s", report)
		return
	}

	//records appear in the order given
	if strings.Index(report, "site1") > strings.Index(report, "site2") {
		t.Errorf("Expected site1 before site2, got %s", report)
		return
	}
}

func TestStdoutNotifier(t *testing.T) {
	buf := &bytes.Buffer{}
	notifier := &StdoutNotifier{Out: buf}

	records := []AvailabilityRecord{makeRecord("site1", "00001", true)}

	if err := notifier.Notify(records); err != nil {
		t.Errorf("Expected nil error, got %v", err)
		return
	}

	output := buf.String()
	if !strings.Contains(output, "site1") || !strings.Contains(output, "00001") {
		t.Errorf("Expected output to contain location id and zip code, got %s", output)
		return
	}
}

func TestStdoutNotifierWriteFailure(t *testing.T) {
	notifier := &StdoutNotifier{Out: &failingWriter{}}

	err := notifier.Notify([]AvailabilityRecord{makeRecord("site1", "00001", true)})
	if err == nil {
		t.Errorf("Expected error, got nil")
		return
	}

	//a broken output stream is fatal, not a NotifyError
	if _, ok := err.(*NotifyError); ok {
		t.Errorf("Expected plain error, got *NotifyError")
		return
	}
}

func TestEmailNotifier(t *testing.T) {
	transport := &fakeTransport{}
	notifier := NewEmailNotifier(transport, "alerts@example.com", "me@example.com")

	records := []AvailabilityRecord{
		makeRecord("site1", "00001", true),
		makeRecord("site2", "00002", true),
	}

	if err := notifier.Notify(records); err != nil {
		t.Errorf("Expected nil error, got %v", err)
		return
	}

	if transport.sends != 1 {
		t.Errorf("Expected 1 send, got %d", transport.sends)
		return
	}
	if transport.from != "alerts@example.com" || transport.to != "me@example.com" {
		t.Errorf("Expected configured addresses, got %s -> %s", transport.from, transport.to)
		return
	}
	if transport.subject != DefaultSubject {
		t.Errorf("Expected subject '%s', got '%s'", DefaultSubject, transport.subject)
		return
	}
	if !strings.Contains(transport.body, "site1") || !strings.Contains(transport.body, "site2") {
		t.Errorf("Expected body to enumerate all records, got %s", transport.body)
		return
	}
}

func TestEmailNotifierTransportError(t *testing.T) {
	transport := &fakeTransport{err: fmt.Errorf("relay rejected the message")}
	notifier := NewEmailNotifier(transport, "alerts@example.com", "me@example.com")

	err := notifier.Notify([]AvailabilityRecord{makeRecord("site1", "00001", true)})
	if err == nil {
		t.Errorf("Expected error, got nil")
		return
	}

	nerr, ok := err.(*NotifyError)
	if !ok {
		t.Errorf("Expected *NotifyError, got %T", err)
		return
	}
	if nerr.Unwrap() != transport.err {
		t.Errorf("Expected wrapped transport error, got %v", nerr.Unwrap())
		return
	}
}
