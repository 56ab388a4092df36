// Package version reports build metadata set with -ldflags or read from the
// embedded VCS build info.
//
//	go build -ldflags "-X github.com/kbukum/whispersrt/version.Version=1.2.0"
package version
