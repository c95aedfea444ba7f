// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"slices"
	"syscall"
)

// fatalErrnos mean inotify ran out of watches (ENOSPC, see
// fs.inotify.max_user_watches) or file descriptors (EMFILE, ENFILE).
var fatalErrnos = []syscall.Errno{syscall.ENOSPC, syscall.EMFILE, syscall.ENFILE}

// isFatalFsnotifyError reports whether err leaves the watcher unable to
// deliver further events.
func isFatalFsnotifyError(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && slices.Contains(fatalErrnos, errno)
}
