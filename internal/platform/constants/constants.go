// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Catalog Limits: Ordering capacities and title length bounds.
  - Rate Limiting: Burst capacities and IP tracking TTLs.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "webndb-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Catalog Limits

const (
	// VolumeOrderMax is the highest order a volume of a novel can occupy.
	// Mirrors the volume_order_limit check constraint.
	VolumeOrderMax = 100

	// ChapterOrderMax is the highest order a chapter of a novel can occupy.
	// Mirrors the chapter_order_limit check constraint.
	ChapterOrderMax = 10000

	// NovelTitleMax is the maximum character count for a novel title.
	NovelTitleMax = 400

	// VolumeTitleMax is the maximum character count for a volume title.
	VolumeTitleMax = 400

	// ReleaseTitleMax is the maximum character count for a release title.
	ReleaseTitleMax = 400

	// NovelDescriptionMax is the maximum character count for a novel description.
	NovelDescriptionMax = 5000
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim expected in access tokens.
	AuthIssuer = "webndb.org"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderLocation      = "Location"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldItems   = "items"
	FieldMessage = "message"
	FieldStatus  = "status"
)

// # Search Indexes

const (
	IndexNovels   = "novels"
	IndexVolumes  = "volumes"
	IndexChapters = "chapters"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixNovel = "catalog:novel:"

	// RedisNovelTTL bounds staleness of cached novel representations.
	RedisNovelTTL = 5 * time.Minute
)
