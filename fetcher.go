package vwg

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const StatePlaceholder = "##STATE##"
const FetcherName = "vaccinespotter"

const EndpointDefaultTimeout = 10

// FetchError covers every failure at the upstream boundary: network,
// bad status code, unparseable body. The watch loop treats them all
// the same way.
type FetchError struct {
	Cause string
	Err   error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Cause, e.Err)
	}

	return e.Cause
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Endpoint struct {
	Url        string
	Headers    []Header
	HttpClient *http.Client
	Timeout    int
}

type Header struct {
	Name  string
	Value string
}

func (endpoint *Endpoint) Fetch(name string) ([]byte, error) {
	client := endpoint.HttpClient
	if client == nil {
		timeout := endpoint.Timeout
		if timeout <= 0 {
			timeout = EndpointDefaultTimeout
		}

		client = &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
			Transport: &http.Transport{
				DisableKeepAlives: false,
			},
		}
	}

	req, err := http.NewRequest("GET", endpoint.Url, nil)
	if err != nil {
		return nil, err
	}

	for _, header := range endpoint.Headers {
		req.Header.Add(header.Name, header.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		Log.Debugf("WARNING: Error during fetch: %v", err)
		return nil, err
	}

	if resp.Body != nil {
		defer resp.Body.Close()
	}

	gzipContent := false
	for headerKey, headerVals := range resp.Header {
		if strings.ToLower(headerKey) == "content-encoding" {
			if strings.ToLower(headerVals[0]) == "gzip" {
				gzipContent = true
			}
		}
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if gzipContent {
		Log.Debug("Decompressing gzipped content...")

		gzReader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}

		body, err = ioutil.ReadAll(gzReader)
		if err != nil {
			return nil, err
		}
	}

	Log.Debugf("%s: fetched %d bytes with status code %d from %s", name, len(body), resp.StatusCode, endpoint.Url)

	if resp.StatusCode != 200 {
		snippet := body
		if len(snippet) > 128 {
			snippet = snippet[:128]
		}
		Log.Warnf("%s: Status code: %d, %s", name, resp.StatusCode, string(snippet))
		return body, fmt.Errorf("Status code: %d", resp.StatusCode)
	}

	return body, nil
}

// Fetcher grabs the full availability snapshot for one state from the
// appointment api. Read-only, no retained state.
type Fetcher struct {
	UrlTemplate string
	Endpoint    *Endpoint
}

func NewFetcher(urlTemplate string, timeoutSeconds int) *Fetcher {
	endpoint := new(Endpoint)
	endpoint.Timeout = timeoutSeconds
	endpoint.Headers = []Header{
		Header{
			Name:  "Accept-Encoding",
			Value: "gzip",
		},
	}

	fetcher := new(Fetcher)
	fetcher.UrlTemplate = urlTemplate
	fetcher.Endpoint = endpoint

	return fetcher
}

func (f *Fetcher) Fetch(stateCode string) (Snapshot, error) {
	f.Endpoint.Url = strings.ReplaceAll(f.UrlTemplate, StatePlaceholder, strings.ToUpper(stateCode))

	body, err := f.Endpoint.Fetch(FetcherName)
	if err != nil {
		return nil, &FetchError{Cause: "fetching appointment data failed", Err: err}
	}

	apiResp := new(VSAPIResp)

	if err = json.Unmarshal(body, apiResp); err != nil {
		if config != nil && (config.DumpOutput || config.DumpOutputS3) {
			dumpOutput(FetcherName, "", body)
		}
		return nil, &FetchError{Cause: "parsing appointment data failed", Err: err}
	}

	return apiResp.ToSnapshot(time.Now()), nil
}

// dumpOutput saves a raw api payload locally and/or to s3 for later
// inspection, returns the s3 url if one was written.
func dumpOutput(name string, hash string, body []byte) (url string) {
	if len(hash) == 0 {
		hashBytes := sha256.Sum256(body)
		hash = hex.EncodeToString(hashBytes[:])
	}

	fileName := fmt.Sprintf("%s.%s.out", name, hash)
	url = ""
	var err error

	if config.DumpOutputS3 {
		if HasAWSCredentials() {
			url, err = PutS3Object(S3PayloadDumpBucket, fileName, body)
			if err != nil {
				Log.Warnf("%v", err)
			} else {
				Log.Debugf("Sent %d bytes to S3: %s", len(body), url)
			}
		} else {
			Log.Warnf("Watcher configured to send to S3 but no AWS credentials were found")
		}
	}

	if config.DumpOutput {
		filePath := filepath.Join(config.DumpDir, fileName)

		if _, err := os.Stat(filePath); err == nil {
			return url
		}

		err = ioutil.WriteFile(filePath, body, 0644)
		if err != nil {
			Log.Warnf("%v", err)
		}

		Log.Debugf("Wrote %d bytes to file: %s", len(body), filePath)
	}

	return url
}
