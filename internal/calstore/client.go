// Package calstore implements the CalStore Client (C3) and Query Planner
// (C4): a REST/CalDAV client that fetches, stores, and queries VEVENTs
// against the calendar backend, with retry and CalDAV REPORT query support.
package calstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/radio-aktywne/showcaster/internal/ical"
	"github.com/radio-aktywne/showcaster/internal/model"
	"github.com/radio-aktywne/showcaster/internal/showerr"
)

// Client is a thin REST wrapper over a calendar collection: one VEVENT
// resource per event, addressed by id, plus REPORT-based querying.
type Client struct {
	http     *http.Client
	baseURL  string
	username string
	password string
	logger   zerolog.Logger
}

// New builds a Client against baseURL (the calendar collection URL, no
// trailing slash), authenticating with HTTP Basic.
func New(baseURL, username, password string, logger zerolog.Logger) *Client {
	return &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		baseURL:  baseURL,
		username: username,
		password: password,
		logger:   logger,
	}
}

// Get fetches the VEVENT resource for id. A 404 is reported as
// showerr.NotFound, any other non-2xx as showerr.Calendar.
func (c *Client) Get(ctx context.Context, id string) (model.Event, error) {
	var event model.Event
	err := c.withRetry(ctx, "calstore.Get", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resourceURL(id), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		c.authenticate(req)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return backoff.Permanent(showerr.Newf(showerr.NotFound, "calstore.Get", "no calendar object for id %q", id))
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("calstore: GET %s: status %d", id, resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(showerr.Newf(showerr.Calendar, "calstore.Get", "GET %s: status %d", id, resp.StatusCode))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(showerr.New(showerr.Calendar, "calstore.Get", err))
		}

		decoded, err := ical.Decode(body)
		if err != nil {
			return backoff.Permanent(err)
		}
		event = decoded
		return nil
	})
	return event, err
}

// Put creates or replaces the VEVENT resource for event.ID.
func (c *Client) Put(ctx context.Context, event model.Event) error {
	data, err := ical.Encode(event)
	if err != nil {
		return err
	}

	return c.withRetry(ctx, "calstore.Put", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.resourceURL(event.ID), bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "text/calendar; charset=utf-8")
		c.authenticate(req)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode >= 500 {
			return fmt.Errorf("calstore: PUT %s: status %d", event.ID, resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(showerr.Newf(showerr.Calendar, "calstore.Put", "PUT %s: status %d", event.ID, resp.StatusCode))
		}
		return nil
	})
}

// Delete removes the VEVENT resource for id. A 404 is treated as success:
// the caller's invariant only needs the resource gone.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.withRetry(ctx, "calstore.Delete", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.resourceURL(id), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		c.authenticate(req)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode == http.StatusNotFound {
			return nil
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("calstore: DELETE %s: status %d", id, resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(showerr.Newf(showerr.Calendar, "calstore.Delete", "DELETE %s: status %d", id, resp.StatusCode))
		}
		return nil
	})
}

// Query issues a CalDAV REPORT for q (the Query Planner, §4.4) and returns
// the matching events, decoded.
func (c *Client) Query(ctx context.Context, q model.Query) ([]model.Event, error) {
	body, err := buildReportBody(q)
	if err != nil {
		return nil, err
	}

	var events []model.Event
	err = c.withRetry(ctx, "calstore.Query", func() error {
		req, err := http.NewRequestWithContext(ctx, "REPORT", c.baseURL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/xml; charset=utf-8")
		req.Header.Set("Depth", "1")
		c.authenticate(req)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("calstore: REPORT: status %d", resp.StatusCode)
		}
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(showerr.New(showerr.Calendar, "calstore.Query", err))
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(showerr.Newf(showerr.Calendar, "calstore.Query", "REPORT: status %d", resp.StatusCode))
		}

		blobs, err := parseMultistatus(respBody)
		if err != nil {
			return backoff.Permanent(err)
		}

		decoded := make([]model.Event, 0, len(blobs))
		for _, blob := range blobs {
			ev, err := ical.Decode(blob)
			if err != nil {
				c.logger.Warn().Err(err).Msg("calstore: skipping malformed calendar-data in REPORT response")
				continue
			}
			decoded = append(decoded, ev)
		}
		events = decoded
		return nil
	})
	return events, err
}

func (c *Client) resourceURL(id string) string {
	return c.baseURL + "/" + id + ".ics"
}

func (c *Client) authenticate(req *http.Request) {
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}

// withRetry runs op with the exponential policy of §4.3: delay 1s, factor
// 2, three attempts total (so at most two retries, at 1s and 2s). A
// backoff.Permanent-wrapped error stops retrying immediately.
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 1 * time.Second
	policy.Multiplier = 2
	policy.RandomizationFactor = 0

	attempt := 0
	bo := backoff.WithMaxRetries(policy, 2)
	err := backoff.Retry(func() error {
		attempt++
		err := fn()
		if err != nil {
			c.logger.Debug().Err(err).Str("op", op).Int("attempt", attempt).Msg("calstore: attempt failed")
		}
		return err
	}, backoff.WithContext(bo, ctx))

	if err == nil {
		return nil
	}
	if showerr.KindOf(err) != "" {
		return err
	}
	return showerr.New(showerr.Calendar, op, err)
}
