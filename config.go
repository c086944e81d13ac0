package vwg

import (
	"fmt"
	"gopkg.in/yaml.v2"
	"os"
	"regexp"
	"strings"
)

const DefaultConfigPath = "./vaxwatch.yaml"
const SmtpPassEnvName = "SMTP_PASSWA"
const ApiHostEnvName = "API_HOSTWA"
const SmtpPassAWSName = "smtp_pass"

const DefaultApiUrl = "https://www.vaccinespotter.org/api/v0/states/##STATE##.json"
const DefaultPollInterval = 60
const DefaultFetchTimeout = 10

var HostPattern = regexp.MustCompile(`(?i)https?://([^/]+)`)

type Config struct {
	Debug            bool   `yaml:"debug"`
	PollInterval     int64  `yaml:"poll_interval"`
	ApiUrl           string `yaml:"api_url"`
	FetchTimeout     int    `yaml:"fetch_timeout"`
	FromEmailAddress string `yaml:"from_email_address"`
	SmtpUsername     string `yaml:"smtp_user"`
	SmtpPassword     string `yaml:"smtp_pass"`
	SmtpHost         string `yaml:"smtp_host"`
	SmtpPort         int    `yaml:"smtp_port"`
	DumpDir          string `yaml:"dump_dir"`
	DumpOutput       bool   `yaml:"dump_output"`
	DumpOutputS3     bool   `yaml:"dump_output_s3"`
}

// baseline settings used when no config file is present
func DefaultConfig() *Config {
	config := &Config{}
	config.PollInterval = DefaultPollInterval
	config.ApiUrl = DefaultApiUrl
	config.FetchTimeout = DefaultFetchTimeout
	config.SmtpPort = 25
	config.DumpDir = "./dump"

	return config
}

func NewConfig(configPath string) (*Config, error) {
	// Create config structure
	config := DefaultConfig()

	// Open config file
	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// Init new YAML decode
	d := yaml.NewDecoder(file)

	// Start YAML decoding from file
	if err := d.Decode(&config); err != nil {
		return nil, err
	}

	if config.Debug {
		Log.SetLevel("debug")
	}

	if config.PollInterval < 10 || config.PollInterval > 86400 {
		return nil, fmt.Errorf("Poll interval must be between 10 and 86400 seconds, configured: %d", config.PollInterval)
	}

	if config.FetchTimeout <= 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}

	if len(config.ApiUrl) == 0 {
		config.ApiUrl = DefaultApiUrl
	}

	//replace host portion of url, usually for testing
	hostOverride := os.Getenv(ApiHostEnvName)
	if len(hostOverride) > 0 {
		newApiUrl, err := ReplaceHost(config.ApiUrl, hostOverride)
		if err != nil {
			return nil, err
		}
		config.ApiUrl = newApiUrl
	}

	Log.Debugf("Appointment API URL: %s", config.ApiUrl)

	if len(config.SmtpHost) > 0 {
		config.resolveSmtpPassword(configPath)
	}

	return config, nil
}

// SMTP credential lookup chain: config file, environment, AWS parameter store.
// Not finding one anywhere is fine, the relay may not require auth.
func (config *Config) resolveSmtpPassword(configPath string) {
	if len(config.SmtpPassword) > 0 {
		Log.Debugf("SMTP password found in %s", configPath)
		return
	}

	config.SmtpPassword = os.Getenv(SmtpPassEnvName)
	notFound := ""
	if len(config.SmtpPassword) == 0 {
		notFound = "NOT "
	}
	Log.Debugf("SMTP password %sfound in environment variable %s", notFound, SmtpPassEnvName)

	if len(config.SmtpPassword) == 0 && HasAWSCredentials() {
		var err error
		config.SmtpPassword, err = GetAWSEncryptedParameter(SmtpPassAWSName)
		if err != nil {
			Log.Warnf("Could not get SMTP password from AWS: %v", err)
		}

		notFound = ""
		if len(config.SmtpPassword) == 0 {
			notFound = "NOT "
		}
		Log.Debugf("SMTP password %sfound in AWS parameter '%s'", notFound, SmtpPassAWSName)
	}
}

func ReplaceHost(originalUrl string, host string) (string, error) {
	matches := HostPattern.FindStringSubmatch(originalUrl)
	if len(matches) < 2 {
		return "", fmt.Errorf("Could not parse host from url: %s", originalUrl)
	}

	originalHost := matches[1]
	newUrl := strings.Replace(originalUrl, originalHost, host, 1)

	return newUrl, nil
}
