package glue

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/smeltergo/compositor/internal/frame"
	"github.com/smeltergo/compositor/internal/ids"
)

// decodeImageFile decodes path using the stdlib codecs for png/jpeg/gif
// and golang.org/x/image's bmp/webp decoders for formats the stdlib
// doesn't cover (webp decode-only; no encoder exists upstream).
func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image asset %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Decode(f)
	case ".jpg", ".jpeg":
		return jpeg.Decode(f)
	case ".gif":
		return gif.Decode(f)
	case ".bmp":
		return bmp.Decode(f)
	case ".webp":
		return webp.Decode(f)
	default:
		img, _, err := image.Decode(f)
		return img, err
	}
}

// toRGBAResolution decodes src and resamples it to the given resolution
// using x/image/draw's approximate bilinear scaler, returning a decoded
// Frame ready for the renderer's UploadTexture.
func toRGBAResolution(img image.Image, res frame.Resolution) frame.Frame {
	dst := image.NewRGBA(image.Rect(0, 0, res.Width, res.Height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return frame.Frame{
		Data:       frame.InterleavedYUV422{Data: dst.Pix, Stride: dst.Stride},
		Resolution: res,
	}
}

// ImageAssetStore decodes and caches registered image assets, reloading
// one in place when its backing file changes on disk. Grounded on the
// teacher's internal/lua.Engine fsnotify watch loop, generalized from
// hot-reloading Lua scripts to hot-reloading image files.
type ImageAssetStore struct {
	mu       sync.RWMutex
	paths    map[ids.RendererId]string
	decoded  map[ids.RendererId]image.Image
	watcher  *fsnotify.Watcher
	closed   chan struct{}
}

func NewImageAssetStore() (*ImageAssetStore, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	s := &ImageAssetStore{
		paths:   make(map[ids.RendererId]string),
		decoded: make(map[ids.RendererId]image.Image),
		watcher: watcher,
		closed:  make(chan struct{}),
	}
	go s.watchLoop()
	return s, nil
}

// Register decodes path and adds it to the store under id, watching its
// parent directory so edits to the file are picked up automatically.
func (s *ImageAssetStore) Register(id ids.RendererId, path string) error {
	img, err := decodeImageFile(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.paths[id] = path
	s.decoded[id] = img
	s.mu.Unlock()

	return s.watcher.Add(filepath.Dir(path))
}

func (s *ImageAssetStore) Unregister(id ids.RendererId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.paths, id)
	delete(s.decoded, id)
}

// Resolve returns the decoded image for id resampled to res, or false if
// id isn't registered.
func (s *ImageAssetStore) Resolve(id ids.RendererId, res frame.Resolution) (frame.Frame, bool) {
	s.mu.RLock()
	img, ok := s.decoded[id]
	s.mu.RUnlock()
	if !ok {
		return frame.Frame{}, false
	}
	return toRGBAResolution(img, res), true
}

func (s *ImageAssetStore) watchLoop() {
	for {
		select {
		case <-s.closed:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.reloadPath(event.Name)
		}
	}
}

func (s *ImageAssetStore) reloadPath(path string) {
	s.mu.Lock()
	var id ids.RendererId
	var found bool
	for rid, p := range s.paths {
		if p == path {
			id, found = rid, true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	img, err := decodeImageFile(path)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.decoded[id] = img
	s.mu.Unlock()
}

func (s *ImageAssetStore) Close() error {
	close(s.closed)
	return s.watcher.Close()
}
