package domain

import (
	"os"
	"runtime"
	"strings"
)

// Device identifies one host that has synced against the vault.
type Device struct {
	ID         int64
	PlatformID string
	Name       string
}

// machineIDPath is the Linux source of device identity; stubbed as a var so
// tests can override it.
var machineIDPath = "/etc/machine-id"

// CurrentPlatformID returns a stable per-host identifier: the contents of
// /etc/machine-id on Linux, or the hostname elsewhere (spec.md leaves the
// non-Linux identifier unspecified beyond "must be defined"; the hostname is
// the closest analogue to machine-id's "this machine" semantics without
// fabricating and persisting a new identifier out of band).
func CurrentPlatformID() (string, error) {
	if runtime.GOOS == "linux" {
		raw, err := os.ReadFile(machineIDPath)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	host, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(host), nil
}

// NewDevice constructs a Device for the current host.
func NewDevice(platformID, name string) *Device {
	return &Device{PlatformID: platformID, Name: name}
}
