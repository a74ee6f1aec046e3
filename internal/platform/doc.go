// Package platform wraps the filesystem operations whose behaviour differs
// between Unix and Windows: permission bits, forced removal of read-only
// trees, and directory links used for in-place package installs.
package platform
