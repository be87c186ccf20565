// Package steam looks up regional store prices through the appdetails
// endpoint. The lookup is stateless: no cache and no retry policy beyond
// what the shared fetcher provides.
package steam
