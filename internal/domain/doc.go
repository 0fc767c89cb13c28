// Package domain defines the scoreboard record's constants and defaults, the
// session identifier format, and the storage contract shared by adapters.
//
// No I/O lives here; adapters import domain, never the other way around.
package domain
