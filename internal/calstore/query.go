package calstore

import (
	"encoding/xml"

	"github.com/radio-aktywne/showcaster/internal/model"
	"github.com/radio-aktywne/showcaster/internal/showerr"
)

// The structs below encode the RFC 4791 §9.5 REPORT body used by Query.
// Namespace and element shapes mirror the CalDAV REPORT request a
// calendar-query issues, reduced to the VEVENT comp-filter with either a
// time-range or an RRULE prop-filter leaf, the two shapes this gateway
// needs (§4.4).

const davNamespace = "DAV:"
const caldavNamespace = "urn:ietf:params:xml:ns:caldav"
const dateWithUTCTimeLayout = "20060102T150405Z"

type calendarQueryRequest struct {
	XMLName xml.Name   `xml:"urn:ietf:params:xml:ns:caldav calendar-query"`
	Prop    queryProp  `xml:"DAV: prop"`
	Filter  xmlFilter  `xml:"urn:ietf:params:xml:ns:caldav filter"`
}

type queryProp struct {
	XMLName      xml.Name `xml:"DAV: prop"`
	GetETag      struct{} `xml:"DAV: getetag"`
	CalendarData struct{} `xml:"urn:ietf:params:xml:ns:caldav calendar-data"`
}

type xmlFilter struct {
	XMLName    xml.Name      `xml:"urn:ietf:params:xml:ns:caldav filter"`
	CompFilter xmlCompFilter `xml:"urn:ietf:params:xml:ns:caldav comp-filter"`
}

type xmlCompFilter struct {
	XMLName     xml.Name        `xml:"urn:ietf:params:xml:ns:caldav comp-filter"`
	Name        string          `xml:"name,attr"`
	TimeRange   *xmlTimeRange   `xml:"urn:ietf:params:xml:ns:caldav time-range,omitempty"`
	PropFilter  *xmlPropFilter  `xml:"urn:ietf:params:xml:ns:caldav prop-filter,omitempty"`
	CompFilters []xmlCompFilter `xml:"urn:ietf:params:xml:ns:caldav comp-filter,omitempty"`
}

type xmlTimeRange struct {
	XMLName xml.Name `xml:"urn:ietf:params:xml:ns:caldav time-range"`
	Start   string   `xml:"start,attr,omitempty"`
	End     string   `xml:"end,attr,omitempty"`
}

// xmlPropFilter matches (or, with IsNotDefined, excludes) a VEVENT property
// by name. RFC 4791 §9.7.2: prop-filter alone tests presence; a
// is-not-defined child flips it to absence.
type xmlPropFilter struct {
	XMLName      xml.Name  `xml:"urn:ietf:params:xml:ns:caldav prop-filter"`
	Name         string    `xml:"name,attr"`
	IsNotDefined *struct{} `xml:"urn:ietf:params:xml:ns:caldav is-not-defined,omitempty"`
}

// buildReportBody renders the query as a VCALENDAR/VEVENT comp-filter REPORT
// body (§4.4): a time-range query becomes a nested VEVENT comp-filter with a
// time-range element; a recurring query becomes a VEVENT comp-filter with a
// prop-filter on RRULE, presence for recurring==true and is-not-defined for
// recurring==false.
func buildReportBody(q model.Query) ([]byte, error) {
	eventFilter := xmlCompFilter{Name: "VEVENT"}

	switch q.Type {
	case "time-range":
		if q.TimeRange == nil {
			return nil, showerr.Newf(showerr.Validation, "calstore.buildReportBody", "time-range query missing bounds")
		}
		tr := &xmlTimeRange{}
		if q.TimeRange.Start != nil {
			tr.Start = q.TimeRange.Start.UTC().Format(dateWithUTCTimeLayout)
		}
		if q.TimeRange.End != nil {
			tr.End = q.TimeRange.End.UTC().Format(dateWithUTCTimeLayout)
		}
		eventFilter.TimeRange = tr
	case "recurring":
		if q.Recurring == nil {
			return nil, showerr.Newf(showerr.Validation, "calstore.buildReportBody", "recurring query missing recurring flag")
		}
		pf := &xmlPropFilter{Name: "RRULE"}
		if !q.Recurring.Recurring {
			pf.IsNotDefined = &struct{}{}
		}
		eventFilter.PropFilter = pf
	default:
		return nil, showerr.Newf(showerr.Validation, "calstore.buildReportBody", "unknown query type %q", q.Type)
	}

	req := calendarQueryRequest{
		Filter: xmlFilter{
			CompFilter: xmlCompFilter{
				Name:        "VCALENDAR",
				CompFilters: []xmlCompFilter{eventFilter},
			},
		},
	}

	out, err := xml.Marshal(req)
	if err != nil {
		return nil, showerr.New(showerr.Calendar, "calstore.buildReportBody", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// multistatus is the RFC 4918 §13 response envelope a REPORT returns.
type multistatus struct {
	XMLName   xml.Name   `xml:"DAV: multistatus"`
	Responses []response `xml:"DAV: response"`
}

type response struct {
	Href     string     `xml:"DAV: href"`
	Propstat []propstat `xml:"DAV: propstat"`
}

type propstat struct {
	Prop   propValue `xml:"DAV: prop"`
	Status string    `xml:"DAV: status"`
}

type propValue struct {
	GetETag      string `xml:"DAV: getetag"`
	CalendarData string `xml:"urn:ietf:params:xml:ns:caldav calendar-data"`
}

// parseMultistatus extracts each response's calendar-data body.
func parseMultistatus(data []byte) ([][]byte, error) {
	var ms multistatus
	if err := xml.Unmarshal(data, &ms); err != nil {
		return nil, showerr.New(showerr.Calendar, "calstore.parseMultistatus", err)
	}

	var out [][]byte
	for _, r := range ms.Responses {
		for _, ps := range r.Propstat {
			if ps.Prop.CalendarData == "" {
				continue
			}
			out = append(out, []byte(ps.Prop.CalendarData))
		}
	}
	return out, nil
}
