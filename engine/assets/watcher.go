package assets

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/KyleNBurke/vulkan-engine/engine/core"
)

type AssetKind int

const (
	AssetKindNone AssetKind = iota
	AssetKindShader
	AssetKindFont
	AssetKindImage
)

type AssetEvent struct {
	Path string
	Kind AssetKind
}

// Watcher reports modified asset files so the engine can reload shaders
// and fonts without a restart.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	events   chan AssetEvent
	done     chan struct{}
	started  sync.Once
}

func NewWatcher() (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsnotify: fsWatch,
		events:   make(chan AssetEvent, 16),
		done:     make(chan struct{}),
	}, nil
}

// Watch adds the named directory and all sub-directories to the watch
// list. May be called for several roots; one event loop serves them all.
func (w *Watcher) Watch(dir string) error {
	err := filepath.Walk(dir, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.started.Do(func() {
		go w.run()
	})
	return nil
}

// Events delivers change notifications for recognized asset files.
func (w *Watcher) Events() <-chan AssetEvent {
	return w.events
}

func (w *Watcher) Close() {
	close(w.done)
}

func (w *Watcher) run() {
	for {
		select {
		case e := <-w.fsnotify.Events:
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
				// New directories join the watch list.
				if err := w.fsnotify.Add(e.Name); err != nil {
					core.LogWarn("failed to watch new directory %s: %s", e.Name, err.Error())
				}
				continue
			}
			kind := determineAssetKind(e.Name)
			if kind == AssetKindNone {
				continue
			}
			select {
			case w.events <- AssetEvent{Path: e.Name, Kind: kind}:
			default:
				core.LogWarn("asset event channel full, dropping event for %s", e.Name)
			}

		case err := <-w.fsnotify.Errors:
			core.LogError(err.Error())

		case <-w.done:
			w.fsnotify.Close()
			close(w.events)
			return
		}
	}
}

func determineAssetKind(path string) AssetKind {
	switch filepath.Ext(path) {
	case ".spv":
		return AssetKindShader
	case ".fnt":
		return AssetKindFont
	case ".png", ".bmp":
		return AssetKindImage
	default:
		return AssetKindNone
	}
}
