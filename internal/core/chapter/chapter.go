// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package chapter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/webndb/webndb/internal/platform/apperr"
	"github.com/webndb/webndb/pkg/optional"
)

// Chapter represents one chapter of a novel, optionally attached to a
// volume. Like volumes, chapters are addressed by the (novel, chapter)
// pair; the public identifier is "novelID-chapterID".
type Chapter struct {
	ChapterID    int64     `json:"-"`
	NovelID      int64     `json:"novel_id,string"`
	VolumeID     *int64    `json:"volume_id"`
	ChapterOrder int       `json:"chapter_order"`
	Releases     []Release `json:"releases"`
}

// Release is one published translation of a chapter.
type Release struct {
	ReleaseID   int64     `json:"release_id,string"`
	ReleaseDate time.Time `json:"release_date"`
	Lang        string    `json:"lang"`
	Official    bool      `json:"official"`
	Title       string    `json:"title"`
	Latin       *string   `json:"latin"`
}

// APIID is the chapter's public composite identifier.
func (chapter *Chapter) APIID() string {
	return fmt.Sprintf("%d-%d", chapter.NovelID, chapter.ChapterID)
}

// MarshalJSON adds the composite chapter_id to the wire representation.
func (chapter *Chapter) MarshalJSON() ([]byte, error) {
	type wire Chapter
	return json.Marshal(struct {
		ChapterID string `json:"chapter_id"`
		*wire
	}{
		ChapterID: chapter.APIID(),
		wire:      (*wire)(chapter),
	})
}

// ParseAPIID splits a public composite chapter identifier.
func ParseAPIID(apiID string) (int64, int64, error) {
	malformed := apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   FieldChapterID,
		Message: "Chapter ID must have the form <novel_id>-<chapter_id>",
	})

	parts := strings.SplitN(apiID, "-", 2)
	if len(parts) != 2 {
		return 0, 0, malformed
	}

	novelID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, malformed
	}
	chapterID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, malformed
	}
	return novelID, chapterID, nil
}

// CreateInput is the request payload for creating a chapter. A nil
// ChapterOrder appends the chapter at the end of the novel's collection.
type CreateInput struct {
	NovelID      int64  `json:"novel_id,string"`
	VolumeID     *int64 `json:"volume_id"`
	ChapterOrder *int   `json:"chapter_order"`
}

// PatchInput is the request payload for partially updating a chapter.
// VolumeID distinguishes absent (keep) from null (detach from volume).
type PatchInput struct {
	VolumeID     optional.Field[int64] `json:"volume_id"`
	ChapterOrder optional.Field[int]   `json:"chapter_order"`
}

// ReleaseInput is the request payload for adding a release to a chapter.
type ReleaseInput struct {
	ReleaseDate time.Time `json:"release_date"`
	Lang        string    `json:"lang"`
	Official    bool      `json:"official"`
	Title       string    `json:"title"`
	Latin       *string   `json:"latin"`
}

// Filter holds the parameters for a chapter listing or search.
type Filter struct {
	// Query is the free-text search term, routed to the search index.
	Query string
}

// Expr is the canonical filter serialization used for page-token
// fingerprinting.
func (filter Filter) Expr() string {
	return ""
}

// Global field names for validation
const (
	FieldChapterID    = "chapter_id"
	FieldNovelID      = "novel_id"
	FieldVolumeID     = "volume_id"
	FieldChapterOrder = "chapter_order"
	FieldReleaseDate  = "release_date"
	FieldReleaseLang  = "lang"
	FieldReleaseTitle = "title"
	FieldReleaseLatin = "latin"
)
