// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package novel

import (
	"github.com/webndb/webndb/internal/platform/constants"
	"github.com/webndb/webndb/internal/platform/meili"
)

// # Search Index Mirror

// Document is the denormalized novel representation stored in the search
// index.
type Document struct {
	NovelID          int64   `json:"novel_id"`
	OriginalLanguage *string `json:"original_language"`
	Description      *string `json:"description"`
	Slug             string  `json:"slug"`
	Titles           []Title `json:"titles"`
}

// IndexSettings declares the novels index configuration.
func IndexSettings() meili.IndexSettings {
	return meili.IndexSettings{
		PrimaryKey: "novel_id",
		Searchable: []string{"titles.title", "titles.latin", "description"},
		Filterable: []string{
			"novel_id",
			"original_language",
			"description",
			"titles.lang",
			"titles.title",
			"titles.latin",
			"titles.official",
		},
		Sortable: []string{"novel_id", "titles.title", "titles.latin"},
	}
}

// toDocument denormalizes a novel for the search index.
func toDocument(n *Novel) Document {
	return Document{
		NovelID:          n.NovelID,
		OriginalLanguage: n.OriginalLanguage,
		Description:      n.Description,
		Slug:             n.Slug,
		Titles:           n.Titles,
	}
}

// mirror pushes the novel to the search index after the owning transaction
// committed. Failures are logged by the caller and never unwind the commit.
func (service *Service) mirror(n *Novel) error {
	if service.search == nil {
		return nil
	}
	return service.search.Upsert(constants.IndexNovels, []Document{toDocument(n)})
}
