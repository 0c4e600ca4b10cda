// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

// Package pagination parses the pagination controls shared by all
// list endpoints.
package pagination

import (
	"net/http"

	"github.com/webndb/webndb/pkg/convert"
)

// Params holds the client-supplied pagination controls of a list request.
type Params struct {
	// PageSize is the raw requested page size; zero or negative means
	// "use the default".
	PageSize int
	// PageToken is the opaque position token, "" for the first page.
	PageToken string
}

/*
FromRequest reads pagination controls from the request query string.

Parameters:
  - request: the incoming HTTP request.

Returns:
  - Params: the parsed controls; unparseable page sizes fall back to zero.
*/
func FromRequest(request *http.Request) Params {
	values := request.URL.Query()
	return Params{
		PageSize:  convert.ToIntD(values.Get("page_size"), 0),
		PageToken: values.Get("page_token"),
	}
}

/*
EffectivePageSize clamps a requested page size into the service window.

Parameters:
  - requested: the raw client value, zero or negative meaning unset.
  - def: the default size used when unset.
  - max: the hard ceiling.

Returns:
  - int: the size to use for the fetch.
*/
func EffectivePageSize(requested, def, max int) int {
	if requested <= 0 {
		return def
	}
	if requested > max {
		return max
	}
	return requested
}
