// Package templates embeds the HTML layouts, pages and partials.
package templates

import "embed"

// FS holds layouts/, pages/ and partials/
//
//go:embed layouts pages partials
var FS embed.FS
