// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package novel

import (
	"strconv"

	"github.com/webndb/webndb/pkg/optional"
)

// Novel represents a web novel with its localized titles.
type Novel struct {
	NovelID          int64   `json:"novel_id,string"`
	OriginalLanguage *string `json:"original_language"`
	Description      *string `json:"description"`
	Slug             string  `json:"slug"`
	Titles           []Title `json:"titles"`
}

// Title is one localized title of a novel. A novel carries at most one
// title per language.
type Title struct {
	Lang     string  `json:"lang"`
	Official bool    `json:"official"`
	Title    string  `json:"title"`
	Latin    *string `json:"latin"`
}

// APIID is the novel's public identifier.
func (novel *Novel) APIID() string {
	return strconv.FormatInt(novel.NovelID, 10)
}

// CreateInput is the request payload for creating a novel.
type CreateInput struct {
	OriginalLanguage *string `json:"original_language"`
	Description      *string `json:"description"`
	Titles           []Title `json:"titles"`
}

// PatchInput is the request payload for partially updating a novel.
// Each field distinguishes absent, null, and set.
type PatchInput struct {
	OriginalLanguage optional.Field[string]  `json:"original_language"`
	Description      optional.Field[string]  `json:"description"`
	Titles           optional.Field[[]Title] `json:"titles"`
}

// Filter holds the parameters for a novel listing or search.
type Filter struct {
	// Language restricts results to novels with that original language.
	Language string
	// Query is the free-text search term, routed to the search index.
	Query string
}

// Expr is the canonical serialization of the filter used for page-token
// fingerprinting. The free-text query is deliberately excluded.
func (filter Filter) Expr() string {
	return "lang=" + filter.Language
}

// Global field names for validation
const (
	FieldOriginalLanguage = "original_language"
	FieldDescription      = "description"
	FieldTitles           = "titles"
	FieldTitleLang        = "titles.lang"
	FieldTitleTitle       = "titles.title"
	FieldTitleLatin       = "titles.latin"
)
