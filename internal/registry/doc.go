// Package registry groups graph registrations into modules.
//
// A Module registers a coherent set of nodes through a Registration, which
// remembers everything it put into the graph so the whole module can be
// removed again with a single Cleanup. A ModuleList keeps modules in order
// and keeps the graph consistent with that order: adding, removing or
// moving a module always ends with a rebuild.
//
// Because providers are resolved in registration order, moving a module
// removes every module from the lower of the two positions onward and adds
// them back in the new order, exactly as if they had been added that way
// from the start.
package registry
