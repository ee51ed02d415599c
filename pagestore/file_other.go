//go:build unix && !linux

package pagestore

import "os"

func datasync(f *os.File) error { return f.Sync() }
