// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package volume

import (
	"github.com/webndb/webndb/internal/platform/constants"
	"github.com/webndb/webndb/internal/platform/meili"
)

// # Search Index Mirror

// Document is the denormalized volume representation stored in the search
// index. The primary key is the public composite identifier.
type Document struct {
	VolumeID    string  `json:"volume_id"`
	NovelID     int64   `json:"novel_id"`
	VolumeOrder int     `json:"volume_order"`
	Titles      []Title `json:"titles"`
}

// IndexSettings declares the volumes index configuration.
func IndexSettings() meili.IndexSettings {
	return meili.IndexSettings{
		PrimaryKey: "volume_id",
		Searchable: []string{"titles.title", "titles.latin"},
		Filterable: []string{
			"volume_id",
			"novel_id",
			"volume_order",
			"titles.lang",
			"titles.title",
			"titles.latin",
			"titles.official",
		},
		Sortable: []string{"volume_id", "novel_id", "titles.title", "titles.latin"},
	}
}

func toDocument(v *Volume) Document {
	return Document{
		VolumeID:    v.APIID(),
		NovelID:     v.NovelID,
		VolumeOrder: v.VolumeOrder,
		Titles:      v.Titles,
	}
}

// mirror pushes the volume to the search index after the owning transaction
// committed. Failures are logged by the caller and never unwind the commit.
func (service *Service) mirror(v *Volume) error {
	if service.search == nil {
		return nil
	}
	return service.search.Upsert(constants.IndexVolumes, []Document{toDocument(v)})
}
