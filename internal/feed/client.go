// Package feed talks to the upstream drone sensor and pilot directory.
package feed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"birdnest/internal/domain"
)

const (
	sourceDrones = "drones"
	sourcePilots = "pilots"

	// maxBodyBytes caps how much of an upstream response is read.
	maxBodyBytes = 4 << 20
)

// Client fetches drone snapshots and pilots over HTTP.
type Client struct {
	dronesURL string
	pilotsURL string
	http      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a feed client. pilotsURL is the collection URL; the
// drone serial is appended as the last path segment.
func NewClient(dronesURL, pilotsURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		dronesURL: dronesURL,
		pilotsURL: strings.TrimRight(pilotsURL, "/"),
		http:      &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchDrones downloads and decodes the current drone snapshot.
func (c *Client) FetchDrones(ctx context.Context) (*domain.DronesDocument, error) {
	body, err := c.get(ctx, sourceDrones, c.dronesURL)
	if err != nil {
		return nil, err
	}
	doc, err := ParseDrones(body)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// FetchPilot looks up the pilot registered for a drone serial.
func (c *Client) FetchPilot(ctx context.Context, serial string) (domain.Pilot, error) {
	if serial == "" {
		return domain.Pilot{}, NewFeedError(ErrorNotFound, sourcePilots, "empty drone serial", nil)
	}
	body, err := c.get(ctx, sourcePilots, c.pilotsURL+"/"+url.PathEscape(serial))
	if err != nil {
		return domain.Pilot{}, err
	}
	return ParsePilot(body)
}

func (c *Client) get(ctx context.Context, source, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, NewFeedError(ErrorNetwork, source, "build request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, NewFeedError(ErrorNetwork, source, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, NewFeedError(ErrorNetwork, source, "read body", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound && source == sourcePilots:
		return nil, NewFeedError(ErrorNotFound, source, "pilot not found", nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, NewFeedError(ErrorUpstream, source, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
	return body, nil
}

// ParseDrones decodes a drone feed XML document.
func ParseDrones(body []byte) (*domain.DronesDocument, error) {
	var doc domain.DronesDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, NewFeedError(ErrorParse, sourceDrones, "decode xml", err)
	}
	return &doc, nil
}

// pilotPayload mirrors the pilot directory's camelCase JSON.
type pilotPayload struct {
	PilotID     string `json:"pilotId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	CreatedDt   string `json:"createdDt"`
	Email       string `json:"email"`
}

// ParsePilot decodes a pilot directory response.
func ParsePilot(body []byte) (domain.Pilot, error) {
	var p pilotPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return domain.Pilot{}, NewFeedError(ErrorParse, sourcePilots, "decode json", err)
	}
	if p.PilotID == "" {
		return domain.Pilot{}, NewFeedError(ErrorParse, sourcePilots, "missing pilotId", nil)
	}
	return domain.Pilot{
		PilotID:     p.PilotID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		PhoneNumber: p.PhoneNumber,
		CreatedDate: p.CreatedDt,
		Email:       p.Email,
	}, nil
}
