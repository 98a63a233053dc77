// Package node defines the immutable descriptor of a registered handler: its
// callable, declared output and dependency names, an optional parameter
// remapping table, and the lazy and asynchronous flags.
//
// A Node knows nothing about its position in a graph. Identity is pointer
// identity: two nodes wrapping the same handler are distinct registrations.
package node
