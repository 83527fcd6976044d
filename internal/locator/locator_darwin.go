//go:build darwin

package locator

import (
	"debug/macho"
	"os"
)

// Locate implements the segment-introspection environment: query the
// running image's __TEXT/__text section, the Go analogue of
// _dyld_get_image_header + getsectiondata.
func Locate() Region {
	exe, err := os.Executable()
	if err != nil {
		return Region{}
	}

	f, err := macho.Open(exe)
	if err != nil {
		return Region{}
	}
	defer f.Close()

	sect := f.Section("__text")
	if sect == nil || sect.Size == 0 {
		return Region{}
	}
	return Region{Start: uintptr(sect.Addr), Length: int(sect.Size), Available: true}
}
