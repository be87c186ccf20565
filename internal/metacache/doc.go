// Package metacache persists resolved metadata values keyed by normalized
// title. Each cache is a single JSON document mapping key to a value with
// its storage timestamp. A nil value is a confirmed "no data" result and is
// cached with a shorter TTL than a positive value, reflecting lower
// confidence that "not found" stays true.
//
// The persistence unit is the whole map: every Put is a read-modify-write
// of the document. No file locking is used; questlog runs as a
// single-instance desktop task, so a concurrent external write at worst
// loses one update.
package metacache
