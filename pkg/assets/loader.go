package assets

import (
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("asset not found")

// Loader resolves sprite paths against a base directory and decodes them off
// the caller's goroutine. Decoded images are cached by resolved path.
type Loader struct {
	base   string
	client *http.Client
	log    *zap.Logger

	mu    sync.RWMutex
	cache map[string]image.Image
}

func NewLoader(base string, log *zap.Logger) *Loader {
	return &Loader{
		base:   base,
		client: &http.Client{Timeout: 20 * time.Second},
		log:    log.Named("assets"),
		cache:  make(map[string]image.Image),
	}
}

// Resolve maps a roster-relative path to a file path or URL
func (l *Loader) Resolve(path string) string {
	if isURL(path) || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.base, path)
}

// Load decodes path on a new goroutine and calls done exactly once.
// There is no retry; a later Load of the same path tries again.
func (l *Loader) Load(path string, done func(image.Image, error)) {
	go func() {
		img, err := l.LoadSync(path)
		if err != nil {
			l.log.Debug("sprite load failed", zap.String("path", path), zap.Error(err))
		}
		done(img, err)
	}()
}

// LoadSync loads an image from cache, disk or network
func (l *Loader) LoadSync(path string) (image.Image, error) {
	full := l.Resolve(path)

	l.mu.RLock()
	if img, ok := l.cache[full]; ok {
		l.mu.RUnlock()
		return img, nil
	}
	l.mu.RUnlock()

	var (
		img image.Image
		err error
	)
	if isURL(full) {
		img, err = l.download(full)
	} else {
		img, err = open(full)
	}
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[full] = img
	l.mu.Unlock()

	return img, nil
}

func open(path string) (image.Image, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return imaging.Open(path)
}

func (l *Loader) download(url string) (image.Image, error) {
	resp, err := l.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	return imaging.Decode(resp.Body)
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
