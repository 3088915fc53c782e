// Package types defines the domain types shared across pipis packages:
// the FS interface, link reconciliation results and installed package
// descriptions.
package types
