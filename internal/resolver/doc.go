// Package resolver sequences a metadata resolution: normalize the title,
// consult the TTL cache, walk the sources in priority order, select among
// candidates by fuzzy similarity, and persist the outcome. Soft source
// failures fall through to the next source; only a missing credential is
// surfaced to the caller.
package resolver
