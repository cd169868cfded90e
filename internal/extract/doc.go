// Package extract turns search result pages into crawler records.
//
// Listing markup is heterogeneous, so every field degrades on its own: a
// missing title container, metadata line or link yields an empty, absent or
// zero value for that field and never fails the page.
package extract
