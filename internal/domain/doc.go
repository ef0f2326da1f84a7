// Package domain contains the error vocabulary shared by the appstate packages.
//
// It has no dependencies on infrastructure concerns (file system, logging,
// metrics) so that every layer, including the crash path, can return these
// values without allocating.
package domain
