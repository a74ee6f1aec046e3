// Package config resolves the zoo installation layout and user settings.
//
// A Config is built once per invocation from the installation root, the
// ZOO_* environment variables and the optional <config>/zoo.yaml settings
// file, then handed to every component by reference. It is read-only after
// Load returns.
package config
