// Package clients builds the backend clients shared by the registry and
// store implementations from their config sections.
package clients
