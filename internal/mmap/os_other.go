//go:build !unix && !windows

package mmap

import "errors"

func osMapAnon(size int) ([]byte, func([]byte) error, error) {
	return nil, nil, errors.New("mmap: anonymous mappings are not supported on this platform")
}
