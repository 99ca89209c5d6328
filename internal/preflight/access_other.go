//go:build !unix

package preflight

import "os"

// Without access(2) the best available probe is opening the directory.
func checkAccess(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
