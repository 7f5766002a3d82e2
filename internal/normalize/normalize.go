// Package normalize turns the raw date and price strings scraped from quote
// pages and feeds into model values.
package normalize

import "errors"

// ErrParse marks a single field that could not be normalized. Callers discard
// the candidate carrying it.
var ErrParse = errors.New("unparseable value")
