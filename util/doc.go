// Package util provides small helpers shared across packages: size parsing,
// secret masking, string cleanup, and generic slice operations.
package util
