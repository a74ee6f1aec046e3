// Package cli maps zoo verbs onto actions. The verb registry is explicit
// (DefaultActions); each Run builds a fresh cobra tree from it, so flag
// values never survive between invocations. Actions only parse flags and
// format output; the work is done by the zoo, resolver and descriptor
// packages.
package cli
