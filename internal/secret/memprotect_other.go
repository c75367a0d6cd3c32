//go:build !linux && !darwin

package secret

// Zeroing in Destroy is the only protection on these platforms.

func lockMemory([]byte) {}

func unlockMemory([]byte) {}

func disableCoreDumps() {}
