// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package constants

// # Languages

// Languages lists the IETF language tags the catalog accepts for titles,
// releases, and a novel's original language.
var Languages = []string{"en", "ko", "zh-Hans", "zh-Hant", "ja"}

// IsLanguage reports whether tag is one of the accepted language tags.
func IsLanguage(tag string) bool {
	for _, known := range Languages {
		if tag == known {
			return true
		}
	}
	return false
}
