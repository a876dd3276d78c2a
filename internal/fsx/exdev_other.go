//go:build !unix

package fsx

// Renames across volumes on non-unix systems fail without a portable errno;
// they surface as plain move errors.
func isEXDEV(error) bool { return false }
