// Package hltb queries HowLongToBeat for "main story" completion times.
// The site exposes no stable API: the search endpoint is addressed through
// a short-lived build identifier scraped from the homepage's embedded
// __NEXT_DATA__ blob, and search payloads are treated as a loosely-typed
// JSON tree rather than a rigid schema, since upstream redeploys change
// both freely. A secondary path scrapes the HTML search page directly.
package hltb
