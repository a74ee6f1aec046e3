// Package registry manages the on-disk package store: the
// <packages>/<name>/<version> tree, the zoo_package.json file in each
// install, requirement ordering, and the listing cache used by
// listPackages.
package registry
