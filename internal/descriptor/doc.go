// Package descriptor turns raw manifest entries into installable package
// references. Each source type (git, path, zootools) implements the same
// Resolve / Install / Uninstall contract against the shared package store.
//
// Descriptors never touch the manifest or the package cache directly; they
// go through the Environment they were built with, which the resolver
// implements.
package descriptor
