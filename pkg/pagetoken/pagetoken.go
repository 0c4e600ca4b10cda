// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

/*
Package pagetoken encodes keyset bookmarks into opaque page tokens.

A token is an encrypted, authenticated envelope binding a bookmark to the
query that produced it: the envelope carries an MD5 fingerprint of the
request's filter parameters and path, and decode rejects any token whose
fingerprint does not match the incoming request. Tokens also expire after a
configurable TTL.

Two plaintext sentinels exist alongside encrypted tokens: the empty string
requests the first page, and [Last] requests the final page. Neither carries
positional state, so neither needs protection.
*/
package pagetoken

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/webndb/webndb/pkg/keyset"
)

// Last is the sentinel token requesting the final page of a result set.
const Last = "last"

// ErrInvalidPageToken covers every way a token can be unusable: malformed,
// tampered with, expired, or issued for a different query. Callers are not
// told which, so tokens leak nothing to probing clients.
var ErrInvalidPageToken = errors.New("invalid page token")

// envelope is the encrypted token payload.
type envelope struct {
	Fingerprint string          `json:"h"`
	Bookmark    keyset.Bookmark `json:"b"`
	IssuedAt    int64           `json:"iat"`
}

// Codec encrypts and decrypts page tokens.
type Codec struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
	ttl time.Duration
	now func() time.Time
}

/*
NewCodec creates a page-token codec.

Parameters:
  - key: 32-byte symmetric key.
  - ttl: how long issued tokens stay valid.

Returns:
  - *Codec: the codec.
  - error: if the key has the wrong length.
*/
func NewCodec(key []byte, ttl time.Duration) (*Codec, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating page token cipher: %w", err)
	}

	return &Codec{aead: aead, ttl: ttl, now: time.Now}, nil
}

/*
Fingerprint derives the request identity a token is bound to.

Parameters:
  - filter: the canonical serialization of the request's filter parameters.
  - path: the request path.

Returns:
  - string: hex MD5 digest of both.
*/
func Fingerprint(filter, path string) string {
	sum := md5.Sum([]byte(filter + "\x00" + path))
	return hex.EncodeToString(sum[:])
}

/*
Encode seals a bookmark into an opaque token bound to fingerprint.

Parameters:
  - fingerprint: the request identity from [Fingerprint].
  - bookmark: the keyset position to carry.

Returns:
  - string: URL-safe base64 token.
  - error: if sealing fails.
*/
func (codec *Codec) Encode(fingerprint string, bookmark keyset.Bookmark) (string, error) {
	plaintext, err := json.Marshal(envelope{
		Fingerprint: fingerprint,
		Bookmark:    bookmark,
		IssuedAt:    codec.now().Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshaling page token: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating page token nonce: %w", err)
	}

	sealed := codec.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

/*
Decode opens a token and validates it against the incoming request.

The sentinels are handled before decryption: the empty string yields a
zero [keyset.Seek] (first page) and [Last] yields a last-page seek; both are
accepted regardless of fingerprint since they carry no positional state.

Parameters:
  - fingerprint: the identity of the incoming request.
  - token: the client-supplied token.

Returns:
  - keyset.Seek: the decoded page position.
  - error: [ErrInvalidPageToken] on any validation failure.
*/
func (codec *Codec) Decode(fingerprint, token string) (keyset.Seek, error) {
	switch token {
	case "":
		return keyset.Seek{}, nil
	case Last:
		return keyset.Seek{Last: true}, nil
	}

	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(sealed) < chacha20poly1305.NonceSizeX {
		return keyset.Seek{}, ErrInvalidPageToken
	}

	nonce, ciphertext := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	plaintext, err := codec.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return keyset.Seek{}, ErrInvalidPageToken
	}

	var payload envelope
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return keyset.Seek{}, ErrInvalidPageToken
	}

	if payload.Fingerprint != fingerprint {
		return keyset.Seek{}, ErrInvalidPageToken
	}
	if codec.ttl > 0 && codec.now().Sub(time.Unix(payload.IssuedAt, 0)) > codec.ttl {
		return keyset.Seek{}, ErrInvalidPageToken
	}

	bookmark := payload.Bookmark
	return keyset.Seek{Bookmark: &bookmark}, nil
}

/*
ResponseTokens issues the prev/next tokens for a resolved page.

A token is only issued for a direction that has more rows; the empty string
signals the boundary of the result set.

Parameters:
  - filter: the canonical filter serialization of the request.
  - path: the request path.
  - paging: the window metadata from the keyset resolver.

Returns:
  - string: prev-page token, or "" when there is no previous page.
  - string: next-page token, or "" when there is no next page.
  - error: if sealing fails.
*/
func (codec *Codec) ResponseTokens(filter, path string, paging keyset.Paging) (string, string, error) {
	fingerprint := Fingerprint(filter, path)

	var prev, next string
	var err error

	if paging.BookmarkPrevious != nil {
		if prev, err = codec.Encode(fingerprint, *paging.BookmarkPrevious); err != nil {
			return "", "", err
		}
	}
	if paging.BookmarkNext != nil {
		if next, err = codec.Encode(fingerprint, *paging.BookmarkNext); err != nil {
			return "", "", err
		}
	}

	return prev, next, nil
}
