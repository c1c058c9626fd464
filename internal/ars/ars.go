// Package ars retrieves archived query results from the Autonomous Relay
// System by message primary key, probing the known deployment tiers.
package ars

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"onehop/internal/logging"
	"onehop/internal/trapi"
)

// DefaultHosts lists the ARS deployments, probed in order.
var DefaultHosts = []string{
	"ars-prod.transltr.io",
	"ars.test.transltr.io",
	"ars.ci.transltr.io",
	"ars-dev.transltr.io",
	"ars.transltr.io",
}

// ErrCollectionID reports that the primary key names a message collection
// rather than a single actor message. Collections group the per-ARA messages
// of one submission; the caller needs a child message's key instead.
var ErrCollectionID = errors.New("primary key names a message collection, not a single message")

// ErrNotFound reports that no ARS deployment had the message.
var ErrNotFound = errors.New("message not found on any ARS host")

// Config configures the retrieval client.
type Config struct {
	Hosts   []string
	Timeout time.Duration

	// BaseURL overrides the https://<host> scheme and host entirely.
	// Used by tests to point at a local server.
	BaseURL string
}

// Client fetches messages from the ARS.
type Client struct {
	hosts   []string
	baseURL string
	trapi   *trapi.Client
}

// NewClient creates an ARS client.
func NewClient(cfg Config) *Client {
	hosts := cfg.Hosts
	if len(hosts) == 0 {
		hosts = DefaultHosts
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		hosts:   hosts,
		baseURL: cfg.BaseURL,
		trapi: trapi.NewClientWithConfig(trapi.ClientConfig{
			Timeout:   timeout,
			UserAgent: "onehop",
		}),
	}
}

// envelope is the ARS message wrapper. The TRAPI payload sits under
// fields.data; fields.actor distinguishes single messages from collections.
type envelope struct {
	Fields struct {
		Actor json.RawMessage `json:"actor"`
		Data  json.RawMessage `json:"data"`
	} `json:"fields"`
}

// collectionActor is the actor value the ARS assigns to collection heads.
const collectionActor = "9"

// RetrieveResult fetches the TRAPI response stored under a message primary
// key, trying each deployment in order and returning the first hit along
// with the host that answered. Returns ErrCollectionID when the key names a
// collection and ErrNotFound when no deployment has it.
func (c *Client) RetrieveResult(ctx context.Context, pk string) (*trapi.Response, string, error) {
	for _, host := range c.hosts {
		base := c.baseURL
		if base == "" {
			base = "https://" + host
		}
		url := fmt.Sprintf("%s/ars/api/messages/%s", base, pk)

		status, raw, err := c.trapi.Get(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			logging.APIDebug("ARS host %s unreachable for %s: %v", host, pk, err)
			continue
		}
		if status != http.StatusOK {
			logging.APIDebug("ARS host %s returned HTTP %d for %s", host, status, pk)
			continue
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, host, fmt.Errorf("undecodable ARS message from %s: %w", host, err)
		}
		if actorString(env.Fields.Actor) == collectionActor {
			return nil, host, ErrCollectionID
		}
		if len(env.Fields.Data) == 0 {
			return nil, host, fmt.Errorf("ARS message %s on %s carries no data", pk, host)
		}

		var resp trapi.Response
		if err := json.Unmarshal(env.Fields.Data, &resp); err != nil {
			return nil, host, fmt.Errorf("undecodable TRAPI payload in ARS message %s: %w", pk, err)
		}
		logging.API("retrieved ARS message %s from %s", pk, host)
		return &resp, host, nil
	}
	return nil, "", fmt.Errorf("%w: %s", ErrNotFound, pk)
}

// actorString renders the actor field, which the ARS serializes sometimes as
// a number and sometimes as a string.
func actorString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}
