// Package dc models data-center identities and their well-known endpoints.
package dc
