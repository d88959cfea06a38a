// Package pagecut fetches a single article page through a gateway URL,
// strips interstitial overlays, locates the main content block, and
// re-renders it with its original colour and weight styling for display
// or export to DOCX, PDF, and Markdown.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, docx/).
package pagecut
