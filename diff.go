package vwg

import (
	"sort"
)

// Diff returns the records in current that just became available: the
// site either was not in previous at all, or was there but not
// available. A nil previous is the first tick of the process and never
// produces events, there is nothing to compare against yet.
//
// Sites dropping out of availability (or out of the response entirely)
// are never reported; they just stop shielding the site from showing
// up as new on a later tick.
func Diff(previous Snapshot, current Snapshot) []AvailabilityRecord {
	newRecords := make([]AvailabilityRecord, 0)

	if previous == nil {
		return newRecords
	}

	for locationId, record := range current {
		if !record.Available {
			continue
		}

		prevRecord, exists := previous[locationId]
		if !exists || !prevRecord.Available {
			newRecords = append(newRecords, record)
		}
	}

	//stable output order for deterministic reports
	sort.Slice(newRecords, func(i, j int) bool {
		return newRecords[i].LocationId < newRecords[j].LocationId
	})

	return newRecords
}
