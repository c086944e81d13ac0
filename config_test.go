package vwg

//unit tests

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

const TestConfigYAML = `debug: false
poll_interval: 30
fetch_timeout: 5
smtp_host: "mail.example.com"
smtp_port: 587
smtp_user: "alerts"
smtp_pass: "hunter2"
from_email_address: "alerts@example.com"
`

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.PollInterval != DefaultPollInterval {
		t.Errorf("Expected poll interval %d, got %d", DefaultPollInterval, config.PollInterval)
		return
	}
	if config.ApiUrl != DefaultApiUrl {
		t.Errorf("Expected default api url, got %s", config.ApiUrl)
		return
	}
	if config.FetchTimeout != DefaultFetchTimeout {
		t.Errorf("Expected fetch timeout %d, got %d", DefaultFetchTimeout, config.FetchTimeout)
		return
	}
}

func TestNewConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "vaxwatch-config")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	configPath := filepath.Join(dir, "vaxwatch.yaml")
	if err = ioutil.WriteFile(configPath, []byte(TestConfigYAML), 0644); err != nil {
		panic(err)
	}

	config, err := NewConfig(configPath)
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
		return
	}

	if config.PollInterval != 30 {
		t.Errorf("Expected poll interval 30, got %d", config.PollInterval)
		return
	}
	if config.SmtpHost != "mail.example.com" {
		t.Errorf("Expected smtp host mail.example.com, got %s", config.SmtpHost)
		return
	}
	if config.SmtpPassword != "hunter2" {
		t.Errorf("Expected smtp password from config file, got %s", config.SmtpPassword)
		return
	}

	//fields absent from the file keep their defaults
	if config.ApiUrl != DefaultApiUrl {
		t.Errorf("Expected default api url, got %s", config.ApiUrl)
		return
	}
}

func TestNewConfigBadInterval(t *testing.T) {
	dir, err := ioutil.TempDir("", "vaxwatch-config")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	configPath := filepath.Join(dir, "vaxwatch.yaml")
	if err = ioutil.WriteFile(configPath, []byte("poll_interval: 1\n"), 0644); err != nil {
		panic(err)
	}

	_, err = NewConfig(configPath)
	if err == nil {
		t.Errorf("Expected error for out of range poll interval, got nil")
		return
	}
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig("./does-not-exist.yaml")
	if err == nil {
		t.Errorf("Expected error, got nil")
		return
	}
	if !os.IsNotExist(err) {
		t.Errorf("Expected a not-exist error, got %v", err)
		return
	}
}

func TestReplaceHost(t *testing.T) {
	newUrl, err := ReplaceHost("https://www.vaccinespotter.org/api/v0/states/WA.json", "localhost:8080")
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
		return
	}
	if newUrl != "https://localhost:8080/api/v0/states/WA.json" {
		t.Errorf("Expected host to be replaced, got %s", newUrl)
		return
	}

	_, err = ReplaceHost("not a url", "localhost")
	if err == nil {
		t.Errorf("Expected error, got nil")
		return
	}
}
