// Package ontology talks to the Translator vocabulary services: the Ontology
// KP, which answers biolink:subclass_of one-hops for term hierarchies, and
// the Node Normalizer, which resolves equivalent identifiers and categories
// for a CURIE.
package ontology

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"onehop/internal/logging"
	"onehop/internal/trapi"
)

// Default public Translator deployments.
const (
	DefaultOntologyKPURL     = "https://automat.transltr.io/ontology-kp/query"
	DefaultNodeNormalizerURL = "https://nodenormalization-sri.renci.org/get_normalized_nodes"
)

// Config configures the vocabulary service client.
type Config struct {
	KPURL         string
	NormalizerURL string
	Timeout       time.Duration
}

// DefaultConfig returns the public endpoints with a short timeout; these
// services answer one-hop hierarchy queries in well under a minute.
func DefaultConfig() Config {
	return Config{
		KPURL:         DefaultOntologyKPURL,
		NormalizerURL: DefaultNodeNormalizerURL,
		Timeout:       60 * time.Second,
	}
}

// Client queries the vocabulary services.
type Client struct {
	kpURL         string
	normalizerURL string
	trapi         *trapi.Client
	httpClient    *http.Client
}

// NewClient creates a vocabulary client.
func NewClient(cfg Config) *Client {
	if cfg.KPURL == "" {
		cfg.KPURL = DefaultOntologyKPURL
	}
	if cfg.NormalizerURL == "" {
		cfg.NormalizerURL = DefaultNodeNormalizerURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		kpURL:         cfg.KPURL,
		normalizerURL: cfg.NormalizerURL,
		trapi: trapi.NewClientWithConfig(trapi.ClientConfig{
			Timeout:   cfg.Timeout,
			UserAgent: "onehop",
		}),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// ParentTerm returns the ontology parent of a term, looked up as a one-hop
// biolink:subclass_of query against the Ontology KP. Returns "" when the
// term has no parent in any ontology hierarchy, which is normal for
// chemicals and other non-ontology identifier spaces. A parent sharing the
// term's CURIE prefix is preferred, so a MONDO disease raises to a MONDO
// disease rather than an UMLS cross-reference.
func (c *Client) ParentTerm(ctx context.Context, curie, category string) (string, error) {
	query := &trapi.Query{
		Message: trapi.Message{
			QueryGraph: &trapi.QueryGraph{
				Nodes: map[string]*trapi.QNode{
					"a": {IDs: []string{curie}},
					"b": {Categories: []string{category}},
				},
				Edges: map[string]*trapi.QEdge{
					"ab": {Subject: "a", Object: "b", Predicates: []string{"biolink:subclass_of"}},
				},
			},
		},
	}

	result, err := c.trapi.PostQuery(ctx, c.kpURL, query)
	if err != nil {
		return "", fmt.Errorf("ontology KP query for %s failed: %w", curie, err)
	}
	if result.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ontology KP returned HTTP %d for %s", result.StatusCode, curie)
	}
	if result.Response == nil || result.Response.Message == nil {
		return "", nil
	}

	prefix, _, _ := strings.Cut(curie, ":")
	var fallback string
	for _, res := range result.Response.Message.Results {
		for _, binding := range res.NodeBindings["b"] {
			parent := binding.ID
			if parent == "" || parent == curie {
				continue
			}
			if p, _, _ := strings.Cut(parent, ":"); p == prefix {
				logging.Ontology("parent of %s is %s", curie, parent)
				return c.preferredTerm(ctx, parent), nil
			}
			if fallback == "" {
				fallback = parent
			}
		}
	}
	if fallback != "" {
		logging.Ontology("parent of %s is %s (cross-prefix)", curie, fallback)
		fallback = c.preferredTerm(ctx, fallback)
	}
	return fallback, nil
}

// preferredTerm resolves a term to its preferred CURIE through the Node
// Normalizer, so downstream queries use the identifier space endpoints
// actually index. Normalizer failures and unknown terms fall back to the
// form the Ontology KP returned.
func (c *Client) preferredTerm(ctx context.Context, curie string) string {
	nodes, err := c.NormalizeNodes(ctx, []string{curie})
	if err != nil {
		logging.Ontology("normalizer lookup for %s failed: %v", curie, err)
		return curie
	}
	if n := nodes[curie]; n != nil && n.ID.Identifier != "" {
		return n.ID.Identifier
	}
	return curie
}

// Identifier is one identifier with its label, as the normalizer reports it.
type Identifier struct {
	Identifier string `json:"identifier"`
	Label      string `json:"label,omitempty"`
}

// NormalizedNode is the normalizer's view of one CURIE.
type NormalizedNode struct {
	ID                    Identifier   `json:"id"`
	EquivalentIdentifiers []Identifier `json:"equivalent_identifiers"`
	Types                 []string     `json:"type"`
}

// NormalizeNodes resolves CURIEs through the Node Normalizer. The response
// maps each requested CURIE to its preferred identifier, equivalent
// identifiers, and biolink categories; unresolvable CURIEs map to nil.
func (c *Client) NormalizeNodes(ctx context.Context, curies []string) (map[string]*NormalizedNode, error) {
	body, err := json.Marshal(map[string][]string{"curies": curies})
	if err != nil {
		return nil, fmt.Errorf("failed to encode normalizer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.normalizerURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build normalizer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("node normalizer request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read normalizer response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("node normalizer returned HTTP %d", resp.StatusCode)
	}

	out := make(map[string]*NormalizedNode)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode normalizer response: %w", err)
	}
	return out, nil
}
