package vwg

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// AvailabilityRecord is the state of a single vaccination site at one
// point in time. Identity is LocationId; a change in Available is what
// the diff engine looks for.
type AvailabilityRecord struct {
	LocationId string
	Provider   string
	Name       string
	Url        string
	Address    string
	City       string
	State      string
	ZipCode    string
	Available  bool
	ObservedAt time.Time
}

// Snapshot maps LocationId to the record observed for that site.
// LocationId is unique within one snapshot, ordering is irrelevant.
type Snapshot map[string]AvailabilityRecord

//vaccinespotter api response types

type VSAPIResp struct {
	Features []VSFeature `json:"features"`
}

type VSFeature struct {
	Properties VSFeatureProps `json:"properties"`
}

type VSFeatureProps struct {
	Id                    json.Number     `json:"id"`
	Provider              string          `json:"provider"`
	Name                  string          `json:"name"`
	Url                   string          `json:"url"`
	Address               string          `json:"address"`
	City                  string          `json:"city"`
	State                 string          `json:"state"`
	PostalCode            string          `json:"postal_code"`
	AppointmentsAvailable bool            `json:"appointments_available"`
	Appointments          []VSAppointment `json:"appointments"`
}

type VSAppointment struct {
	Time string `json:"time"`
}

// ToSnapshot flattens the GeoJSON feature list into a Snapshot. A site
// counts as available when the upstream flag says so or when it still
// lists concrete appointment slots.
func (resp *VSAPIResp) ToSnapshot(observedAt time.Time) Snapshot {
	snapshot := make(Snapshot, len(resp.Features))

	for _, feature := range resp.Features {
		props := feature.Properties

		locationId := props.Id.String()
		if len(locationId) == 0 {
			continue
		}

		record := AvailabilityRecord{
			LocationId: locationId,
			Provider:   props.Provider,
			Name:       props.Name,
			Url:        props.Url,
			Address:    props.Address,
			City:       props.City,
			State:      props.State,
			ZipCode:    props.PostalCode,
			Available:  props.AppointmentsAvailable || len(props.Appointments) > 0,
			ObservedAt: observedAt,
		}

		snapshot[record.LocationId] = record
	}

	return snapshot
}

// Render returns the human-readable block for one site, always
// including the location id and zip code.
func (r AvailabilityRecord) Render() string {
	sb := strings.Builder{}

	sb.WriteString(fmt.Sprintf("%s-%s (site %s)%s", stringOrQuestion(r.Provider), stringOrQuestion(r.Name), r.LocationId, NEWLINE))
	sb.WriteString(fmt.Sprintf("%s%s", stringOrQuestion(r.Url), NEWLINE))
	sb.WriteString(fmt.Sprintf("%s%s", stringOrQuestion(r.Address), NEWLINE))
	sb.WriteString(fmt.Sprintf("%s, %s %s%s", stringOrQuestion(r.City), stringOrQuestion(r.State), stringOrQuestion(r.ZipCode), NEWLINE))

	return sb.String()
}

func stringOrQuestion(s string) string {
	if len(s) == 0 {
		return "??"
	}

	return s
}
