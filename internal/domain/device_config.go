package domain

// DeviceConfig holds the per-device path configuration. Either path may be
// unset (nil) until the user runs set-locked / set-unlocked.
type DeviceConfig struct {
	ID           int64
	DeviceID     int64
	LockedPath   *string
	UnlockedPath *string
}

// HasLockedPath reports whether a locked path has been configured.
func (c *DeviceConfig) HasLockedPath() bool {
	return c.LockedPath != nil && *c.LockedPath != ""
}

// HasUnlockedPath reports whether an unlocked path has been configured.
func (c *DeviceConfig) HasUnlockedPath() bool {
	return c.UnlockedPath != nil && *c.UnlockedPath != ""
}
