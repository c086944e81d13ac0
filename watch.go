package vwg

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"
)

var config *Config

var StateCodePattern = regexp.MustCompile(`^[A-Za-z]{2}$`)

// SnapshotFetcher is what the watch loop needs from the upstream
// boundary: one state code in, one full snapshot out.
type SnapshotFetcher interface {
	Fetch(stateCode string) (Snapshot, error)
}

// Watcher runs the poll cycle: fetch, filter, diff against the
// retained previous snapshot, notify, retain. The retained snapshot is
// owned exclusively by the watcher, no tick overlaps another.
type Watcher struct {
	StateCode string
	Fetcher   SnapshotFetcher
	AllowList ZipAllowList
	Notifier  Notifier
	Interval  time.Duration

	previous Snapshot
}

func NewWatcher(stateCode string, fetcher SnapshotFetcher, allowList ZipAllowList, notifier Notifier, interval time.Duration) *Watcher {
	watcher := new(Watcher)
	watcher.StateCode = stateCode
	watcher.Fetcher = fetcher
	watcher.AllowList = allowList
	watcher.Notifier = notifier
	watcher.Interval = interval

	return watcher
}

// Setup reads config and wires a watcher from the command line inputs.
// Email delivery is only selected when both addresses are known,
// anything partial falls back to stdout.
func Setup(configPath string, stateCode string, zipsPath string, fromEmail string, toEmail string) (*Watcher, error) {
	var err error

	config, err = NewConfig(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			Log.Debugf("No config file at %s, using defaults", configPath)
			config = DefaultConfig()
		} else {
			return nil, fmt.Errorf("Can't read config: %v", err)
		}
	}

	if !StateCodePattern.MatchString(stateCode) {
		return nil, fmt.Errorf("Expecting a 2 letter state code, got: %s", stateCode)
	}

	if config.DumpOutput {
		if _, err = os.Stat(config.DumpDir); err != nil {
			if err = os.Mkdir(config.DumpDir, 0755); err != nil {
				return nil, fmt.Errorf("Can't create dump dir %s: %v", config.DumpDir, err)
			}
		}
	}

	allowList := LoadZipAllowList(zipsPath)

	if len(fromEmail) == 0 {
		fromEmail = config.FromEmailAddress
	}

	var notifier Notifier
	if len(fromEmail) > 0 && len(toEmail) > 0 {
		transport := &SMTPTransport{
			Host:     config.SmtpHost,
			Port:     config.SmtpPort,
			Username: config.SmtpUsername,
			Password: config.SmtpPassword,
		}
		if len(transport.Host) == 0 {
			transport.Host = "localhost"
		}

		Log.Infof("Email notifications enabled: %s -> %s via %s:%d", fromEmail, toEmail, transport.Host, transport.Port)
		notifier = NewEmailNotifier(transport, fromEmail, toEmail)
	} else {
		if len(fromEmail) > 0 || len(toEmail) > 0 {
			Log.Warnf("Both --from-email and --to-email are needed for email notifications, printing to stdout instead")
		}
		notifier = NewStdoutNotifier()
	}

	interval := time.Duration(config.PollInterval) * time.Second

	return NewWatcher(stateCode, NewFetcher(config.ApiUrl, config.FetchTimeout), allowList, notifier, interval), nil
}

// RunOnce executes a single tick. Fetch and delivery failures are
// logged and absorbed; only an unrecoverable notifier fault (stdout
// gone) comes back as an error.
func (w *Watcher) RunOnce() error {
	Log.Infof("Requesting appointments for state %s", w.StateCode)

	snapshot, err := w.Fetcher.Fetch(w.StateCode)
	if err != nil {
		//previous snapshot stays untouched, a failed fetch does not
		//mean everything became unavailable
		Log.Errorf("Failed to request new appointments: %v", err)
		return nil
	}

	filtered := FilterByZip(snapshot, w.AllowList)

	newRecords := Diff(w.previous, filtered)

	if len(newRecords) > 0 {
		Log.Infof("%d location(s) newly available", len(newRecords))

		if err = w.Notifier.Notify(newRecords); err != nil {
			if nerr, ok := err.(*NotifyError); ok {
				Log.Errorf("%v", nerr)
			} else {
				return err
			}
		}
	} else {
		Log.Debugf("No new appointments among %d location(s)", len(filtered))
	}

	w.previous = filtered

	return nil
}

// ReportOnce runs a single cycle that reports everything currently
// available. One-shot invocations (lambda, --once) have no earlier
// tick to compare against, so they diff against an empty snapshot
// instead of suppressing the result like a first tick would.
func (w *Watcher) ReportOnce() error {
	w.previous = make(Snapshot)

	return w.RunOnce()
}

// Run ticks forever on the configured interval. A tick that overruns
// the interval is followed immediately by the next one, ticks are
// never skipped or overlapped. An in-flight tick always completes
// before cancellation takes effect.
func (w *Watcher) Run(ctx context.Context) error {
	Log.Infof("Watching state %s every %v...", w.StateCode, w.Interval)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			Log.Infof("Shutting down watcher for state %s", w.StateCode)
			return nil
		case <-ticker.C:
		}
	}
}
