// Package resolver owns the environment manifest and the in-memory package
// cache for one invocation. It turns manifest entries into descriptors,
// resolves and installs them, orders the result by requirements and
// computes the environment variables the packages declare.
package resolver
