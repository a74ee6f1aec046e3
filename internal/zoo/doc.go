// Package zoo owns one zoo installation: its configuration, the resolver
// bound to it, and the installation-wide operations built on top of them
// (setup of a fresh root, bundling, health checks).
package zoo
