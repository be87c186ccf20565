// Package textutil provides the text processing that underpins title
// matching: canonicalizing storefront game titles into comparable keys and
// scoring similarity between two normalized strings.
//
// Normalization is deliberately lossy. Edition suffixes, release years, and
// punctuation do not affect a game's identity, so stripping them raises
// cache-hit rates and match quality without maintaining an alias table. Two
// titles that normalize identically are treated as the same game.
package textutil
