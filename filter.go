package vwg

import (
	"encoding/json"
	"io/ioutil"
)

// ZipAllowList is the optional set of zip codes the user cares about.
// An empty (or nil) list means every location passes.
type ZipAllowList map[string]bool

func NewZipAllowList(zips []string) ZipAllowList {
	allowList := make(ZipAllowList)

	for _, zip := range zips {
		allowList[zip] = true
	}

	return allowList
}

func (z ZipAllowList) Contains(zip string) bool {
	return z[zip]
}

func (z ZipAllowList) Empty() bool {
	return len(z) == 0
}

// LoadZipAllowList reads a json array of zip code strings. An empty
// path or an unreadable/garbled file means no filtering.
func LoadZipAllowList(path string) ZipAllowList {
	if len(path) == 0 {
		return nil
	}

	bytes, err := ioutil.ReadFile(path)
	if err != nil {
		Log.Warnf("Failed to read zip allow list %s: %v", path, err)
		return nil
	}

	zips := make([]string, 0)
	if err = json.Unmarshal(bytes, &zips); err != nil {
		Log.Warnf("Failed to parse zip allow list %s: %v", path, err)
		return nil
	}

	Log.Debugf("Loaded %d zip code(s) from %s", len(zips), path)

	return NewZipAllowList(zips)
}

// FilterByZip narrows a snapshot down to the locations whose zip code
// is on the allow list. Identity when the list is empty.
func FilterByZip(snapshot Snapshot, allowList ZipAllowList) Snapshot {
	if allowList.Empty() {
		return snapshot
	}

	filtered := make(Snapshot)

	for locationId, record := range snapshot {
		if allowList.Contains(record.ZipCode) {
			filtered[locationId] = record
		}
	}

	return filtered
}
