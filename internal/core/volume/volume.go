// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package volume

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/webndb/webndb/internal/platform/apperr"
	"github.com/webndb/webndb/pkg/optional"
)

// Volume represents one volume of a novel. The database cannot guarantee
// volume_id alone is unique, so volumes are always addressed by the
// (novel, volume) pair; the public identifier is "novelID-volumeID".
type Volume struct {
	VolumeID    int64   `json:"-"`
	NovelID     int64   `json:"novel_id,string"`
	VolumeOrder int     `json:"volume_order"`
	Titles      []Title `json:"titles"`
}

// Title is one localized title of a volume.
type Title struct {
	Lang     string  `json:"lang"`
	Official bool    `json:"official"`
	Title    string  `json:"title"`
	Latin    *string `json:"latin"`
}

// APIID is the volume's public composite identifier.
func (volume *Volume) APIID() string {
	return fmt.Sprintf("%d-%d", volume.NovelID, volume.VolumeID)
}

// MarshalJSON adds the composite volume_id to the wire representation.
func (volume *Volume) MarshalJSON() ([]byte, error) {
	type wire Volume
	return json.Marshal(struct {
		VolumeID string `json:"volume_id"`
		*wire
	}{
		VolumeID: volume.APIID(),
		wire:     (*wire)(volume),
	})
}

/*
ParseAPIID splits a public composite volume identifier.

Parameters:
  - apiID: the "novelID-volumeID" identifier from the request path.

Returns:
  - int64: the novel id.
  - int64: the volume's surrogate key.
  - error: a validation error when the identifier is malformed.
*/
func ParseAPIID(apiID string) (int64, int64, error) {
	malformed := apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   FieldVolumeID,
		Message: "Volume ID must have the form <novel_id>-<volume_id>",
	})

	parts := strings.SplitN(apiID, "-", 2)
	if len(parts) != 2 {
		return 0, 0, malformed
	}

	novelID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, malformed
	}
	volumeID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, malformed
	}
	return novelID, volumeID, nil
}

// CreateInput is the request payload for creating a volume. A nil
// VolumeOrder appends the volume at the end of the novel's collection.
type CreateInput struct {
	NovelID     int64   `json:"novel_id,string"`
	VolumeOrder *int    `json:"volume_order"`
	Titles      []Title `json:"titles"`
}

// PatchInput is the request payload for partially updating a volume.
// Sending the current volume_order (or omitting it) leaves the order
// untouched; the titles array, when present, replaces the collection.
type PatchInput struct {
	VolumeOrder optional.Field[int]     `json:"volume_order"`
	Titles      optional.Field[[]Title] `json:"titles"`
}

// Filter holds the parameters for a volume listing or search.
type Filter struct {
	// Query is the free-text search term, routed to the search index.
	Query string
}

// Expr is the canonical filter serialization used for page-token
// fingerprinting. Volume listings carry no filter parameters; the
// fingerprint still binds the endpoint path.
func (filter Filter) Expr() string {
	return ""
}

// Global field names for validation
const (
	FieldVolumeID    = "volume_id"
	FieldNovelID     = "novel_id"
	FieldVolumeOrder = "volume_order"
	FieldTitles      = "titles"
	FieldTitleLang   = "titles.lang"
	FieldTitleTitle  = "titles.title"
	FieldTitleLatin  = "titles.latin"
)
