package calstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radio-aktywne/showcaster/internal/model"
)

func TestBuildReportBodyTimeRange(t *testing.T) {
	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC)

	body, err := buildReportBody(model.Query{
		Type:      "time-range",
		TimeRange: &model.TimeRangeQuery{Start: &start, End: &end},
	})
	require.NoError(t, err)

	s := string(body)
	assert.Contains(t, s, `name="VCALENDAR"`)
	assert.Contains(t, s, `name="VEVENT"`)
	assert.Contains(t, s, `start="20300101T000000Z"`)
	assert.Contains(t, s, `end="20300201T000000Z"`)
}

func TestBuildReportBodyRecurring(t *testing.T) {
	body, err := buildReportBody(model.Query{Type: "recurring", Recurring: &model.RecurringQuery{Recurring: true}})
	require.NoError(t, err)

	s := string(body)
	assert.Contains(t, s, `name="VEVENT"`)
	assert.Contains(t, s, "prop-filter")
	assert.Contains(t, s, `name="RRULE"`)
	assert.NotContains(t, s, "is-not-defined")
}

func TestBuildReportBodyNotRecurring(t *testing.T) {
	body, err := buildReportBody(model.Query{Type: "recurring", Recurring: &model.RecurringQuery{Recurring: false}})
	require.NoError(t, err)

	s := string(body)
	assert.Contains(t, s, `name="VEVENT"`)
	assert.Contains(t, s, "prop-filter")
	assert.Contains(t, s, `name="RRULE"`)
	assert.Contains(t, s, "is-not-defined")
}

func TestBuildReportBodyRejectsUnknownType(t *testing.T) {
	_, err := buildReportBody(model.Query{Type: "bogus"})
	assert.Error(t, err)
}

func TestParseMultistatusExtractsCalendarData(t *testing.T) {
	raw := `<?xml version="1.0" encoding="utf-8"?>
<multistatus xmlns="DAV:" xmlns:C="urn:ietf:params:xml:ns:caldav">
  <response>
    <href>/calendars/evt-1.ics</href>
    <propstat>
      <prop>
        <getetag>"abc123"</getetag>
        <C:calendar-data>BEGIN:VCALENDAR
END:VCALENDAR
</C:calendar-data>
      </prop>
      <status>HTTP/1.1 200 OK</status>
    </propstat>
  </response>
</multistatus>`

	blobs, err := parseMultistatus([]byte(raw))
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	assert.Contains(t, string(blobs[0]), "BEGIN:VCALENDAR")
}
