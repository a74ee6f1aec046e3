// Package scaffold generates new zoo packages from embedded templates. It
// powers the createPackage command: a zoo_package.json, a README and a
// python module skeleton ready for installPackage.
package scaffold
