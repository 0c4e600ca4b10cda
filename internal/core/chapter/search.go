// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package chapter

import (
	"github.com/webndb/webndb/internal/platform/constants"
	"github.com/webndb/webndb/internal/platform/meili"
)

// # Search Index Mirror

// Document is the denormalized chapter representation stored in the search
// index. The primary key is the public composite identifier.
type Document struct {
	ChapterID    string    `json:"chapter_id"`
	NovelID      int64     `json:"novel_id"`
	VolumeID     *int64    `json:"volume_id"`
	ChapterOrder int       `json:"chapter_order"`
	Releases     []Release `json:"releases"`
}

// IndexSettings declares the chapters index configuration.
func IndexSettings() meili.IndexSettings {
	return meili.IndexSettings{
		PrimaryKey: "chapter_id",
		Searchable: []string{"releases.title", "releases.latin"},
		Filterable: []string{
			"chapter_id",
			"novel_id",
			"volume_id",
			"chapter_order",
			"releases.lang",
			"releases.title",
			"releases.latin",
			"releases.official",
		},
		Sortable: []string{"chapter_id", "novel_id", "chapter_order", "releases.release_date"},
	}
}

func toDocument(c *Chapter) Document {
	return Document{
		ChapterID:    c.APIID(),
		NovelID:      c.NovelID,
		VolumeID:     c.VolumeID,
		ChapterOrder: c.ChapterOrder,
		Releases:     c.Releases,
	}
}

// mirror pushes the chapter to the search index after the owning
// transaction committed. Failures are logged by the caller and never unwind
// the commit.
func (service *Service) mirror(c *Chapter) error {
	if service.search == nil {
		return nil
	}
	return service.search.Upsert(constants.IndexChapters, []Document{toDocument(c)})
}
