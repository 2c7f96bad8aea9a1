package roster

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var ErrEmpty = errors.New("roster is empty")
var ErrMalformed = errors.New("roster is malformed")

// Creature is one roster entry. Front and Back override the default
// "front/<file>" and "back/<file>" sprite paths when set.
type Creature struct {
	Name  string `json:"name"`
	File  string `json:"file"`
	Front string `json:"front,omitempty"`
	Back  string `json:"back,omitempty"`
}

// FrontSprite is the sprite path relative to the assets dir
func (c Creature) FrontSprite() string {
	if c.Front != "" {
		return c.Front
	}
	return filepath.Join("front", c.File)
}

func (c Creature) BackSprite() string {
	if c.Back != "" {
		return c.Back
	}
	return filepath.Join("back", c.File)
}

func (c Creature) valid() bool {
	return c.Name != "" && (c.File != "" || (c.Front != "" && c.Back != ""))
}

// Fallback is used when no source yields a usable roster
func Fallback() []Creature {
	return []Creature{
		{Name: "Bulbasaur", File: "1.png"},
		{Name: "Charmander", File: "4.png"},
		{Name: "Squirtle", File: "7.png"},
	}
}

// Parse reads a JSON roster. A top-level object is coerced to the sequence
// of its values, in document order. Entries without a name or sprite are
// skipped.
func Parse(data []byte) ([]Creature, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformed
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() && !root.IsObject() {
		return nil, ErrMalformed
	}

	var out []Creature
	root.ForEach(func(_, v gjson.Result) bool {
		c := Creature{
			Name:  strings.TrimSpace(v.Get("name").String()),
			File:  strings.TrimSpace(v.Get("file").String()),
			Front: strings.TrimSpace(v.Get("front").String()),
			Back:  strings.TrimSpace(v.Get("back").String()),
		}
		if c.valid() {
			out = append(out, c)
		}
		return true
	})

	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// LoadFile reads a roster from disk. ".html" files go through ParseHTML,
// everything else is treated as JSON.
func LoadFile(path string) ([]Creature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return ParseHTML(f)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Sources is where Load looks for a roster, in order: URL, then Path.
type Sources struct {
	URL  string
	Path string
}

// Load tries every configured source and falls back to the built-in list.
// It never fails.
func Load(src Sources, log *zap.Logger) []Creature {
	if src.URL != "" {
		list, err := Fetch(src.URL)
		if err == nil {
			log.Info("roster fetched", zap.String("url", src.URL), zap.Int("count", len(list)))
			return list
		}
		log.Warn("roster fetch failed", zap.String("url", src.URL), zap.Error(err))
	}

	if src.Path != "" {
		list, err := LoadFile(src.Path)
		if err == nil {
			log.Info("roster loaded", zap.String("path", src.Path), zap.Int("count", len(list)))
			return list
		}
		log.Warn("roster load failed", zap.String("path", src.Path), zap.Error(err))
	}

	list := Fallback()
	log.Warn("using fallback roster", zap.Int("count", len(list)))
	return list
}

func wrap(src string, err error) error {
	return fmt.Errorf("roster %s: %w", src, err)
}
