package roster

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// spriteSelector matches roster entries on an HTML page:
//
//	<li data-sprite="25.png" data-name="Pikachu">Pikachu</li>
//
// data-name wins over the element text.
const spriteSelector = "[data-sprite]"

func fromSelection(s *goquery.Selection) (Creature, bool) {
	file, _ := s.Attr("data-sprite")
	name, ok := s.Attr("data-name")
	if !ok {
		name = s.Text()
	}
	c := Creature{
		Name: strings.TrimSpace(name),
		File: strings.TrimSpace(file),
	}
	c.Front, _ = s.Attr("data-front")
	c.Back, _ = s.Attr("data-back")
	return c, c.valid()
}

// ParseHTML extracts a roster from an HTML document
func ParseHTML(r io.Reader) ([]Creature, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, wrap("html", err)
	}

	var out []Creature
	doc.Find(spriteSelector).Each(func(i int, s *goquery.Selection) {
		if c, ok := fromSelection(s); ok {
			out = append(out, c)
		}
	})

	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}
