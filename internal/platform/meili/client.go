// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

/*
Package meili provides a managed Meilisearch client for the search-index mirror.

The relational store is the source of truth; Meilisearch holds denormalized
copies of catalog documents for full-text discovery. Mirror writes happen
AFTER the owning database transaction commits and are best-effort: a failed
mirror write is logged, never propagated, and self-heals on the next write
of the same document.
*/
package meili

import (
	"fmt"
	"log/slog"

	"github.com/meilisearch/meilisearch-go"
)

// IndexSettings declares how an index ranks and filters its documents.
type IndexSettings struct {
	PrimaryKey string
	// Order matters: earlier searchable attributes weigh more in relevancy.
	Searchable []string
	Filterable []string
	Sortable   []string
}

// Client wraps the meilisearch SDK with index bootstrap and upsert helpers.
type Client struct {
	manager meilisearch.ServiceManager
	logger  *slog.Logger
}

// NewClient connects to Meilisearch and verifies it is reachable.
func NewClient(host, apiKey string, logger *slog.Logger) (*Client, error) {
	if host == "" {
		return nil, fmt.Errorf("meili: host is empty")
	}

	manager := meilisearch.New(host, meilisearch.WithAPIKey(apiKey))

	if _, err := manager.Health(); err != nil {
		return nil, fmt.Errorf("meili: health check failed: %w", err)
	}

	logger.Info("meilisearch client connected", slog.String("host", host))

	return &Client{manager: manager, logger: logger}, nil
}

// EnsureIndex creates the named index with the given settings if it does not
// exist yet. Settings of an existing index are left untouched so that manual
// tuning survives restarts.
func (c *Client) EnsureIndex(name string, settings IndexSettings) error {
	if _, err := c.manager.GetIndex(name); err == nil {
		return nil
	}

	if _, err := c.manager.CreateIndex(&meilisearch.IndexConfig{
		Uid:        name,
		PrimaryKey: settings.PrimaryKey,
	}); err != nil {
		return fmt.Errorf("meili: failed to create index %q: %w", name, err)
	}

	_, err := c.manager.Index(name).UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: settings.Searchable,
		FilterableAttributes: settings.Filterable,
		SortableAttributes:   settings.Sortable,
		RankingRules:         []string{"words", "sort", "typo", "proximity", "attribute", "exactness"},
	})
	if err != nil {
		return fmt.Errorf("meili: failed to configure index %q: %w", name, err)
	}

	c.logger.Info("meilisearch index created", slog.String("index", name))
	return nil
}

// Upsert adds or replaces documents in the named index.
func (c *Client) Upsert(index string, documents any) error {
	if _, err := c.manager.Index(index).UpdateDocuments(documents, nil); err != nil {
		return fmt.Errorf("meili: failed to upsert documents into %q: %w", index, err)
	}
	return nil
}

// Search runs a full-text query against the named index.
func (c *Client) Search(index, query string, request *meilisearch.SearchRequest) (*meilisearch.SearchResponse, error) {
	response, err := c.manager.Index(index).Search(query, request)
	if err != nil {
		return nil, fmt.Errorf("meili: search on %q failed: %w", index, err)
	}
	return response, nil
}

// Ping verifies that the Meilisearch server is healthy.
func (c *Client) Ping() error {
	if _, err := c.manager.Health(); err != nil {
		return fmt.Errorf("meili: ping failed: %w", err)
	}
	return nil
}
