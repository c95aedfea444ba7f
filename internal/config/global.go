// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces the platform config directory when non-empty.
var configDirOverride string

// SetConfigDirOverride points ConfigDir at dir until the returned function is
// called. os.UserHomeDir ignores HOME on some platforms, so tests use this
// instead of faking the home directory.
func SetConfigDirOverride(dir string) (restore func()) {
	prev := configDirOverride
	configDirOverride = dir
	return func() { configDirOverride = prev }
}
