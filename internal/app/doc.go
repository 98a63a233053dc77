// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the execution lifecycle: loading manifests
// into a graph, then pumping it once, as a what-if query, or on a ticker,
// decoupled from any specific entrypoint like a CLI.
package app
