// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/charmbracelet/log"

	"scriptree-cli/internal/refresh"
	"scriptree-cli/internal/watch"
	"scriptree-cli/internal/workspace"
)

// newManifestWatcher watches the folders of the current snapshot. Every
// debounced change refreshes pub and re-syncs the watched folders, so new
// workspace folders are picked up. Refresh errors go to onError when set
// and to logger.
func newManifestWatcher(s *settings, pub *refresh.Publisher, logger *log.Logger, onError func(error)) (*watch.Watcher, error) {
	var (
		w   *watch.Watcher
		err error
	)
	w, err = watch.New(watch.Config{
		Dirs:     workspace.Dirs(pub.Current().Folders()),
		Ignore:   s.cfg.Watch.Ignore,
		Debounce: s.cfg.Watch.Debounce,
		Logger:   logger,
		OnChange: func(ctx context.Context, changed []string) error {
			logger.Debug("manifests changed", "paths", changed)
			snap, err := pub.Refresh(ctx)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				return err
			}
			return w.Sync(workspace.Dirs(snap.Folders()))
		},
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}
