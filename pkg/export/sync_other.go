//go:build !linux
// +build !linux

package export

import "os"

func syncFile(f *os.File) error {
	return f.Sync()
}
