//go:build !linux && !darwin && !windows

package main

import "errors"

func totalMemory() (uint64, error) {
	return 0, errors.New("memory size unknown on this platform")
}
