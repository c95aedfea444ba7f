// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"slices"
	"syscall"
)

// fatalErrnos are the Win32 codes after which ReadDirectoryChangesW stops
// reporting: ERROR_TOO_MANY_OPEN_FILES (4), ERROR_INVALID_HANDLE (6, the
// folder was removed or unmounted) and ERROR_NOT_ENOUGH_MEMORY (8).
var fatalErrnos = []syscall.Errno{4, 6, 8}

// isFatalFsnotifyError reports whether err leaves the watcher unable to
// deliver further events.
func isFatalFsnotifyError(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && slices.Contains(fatalErrnos, errno)
}
