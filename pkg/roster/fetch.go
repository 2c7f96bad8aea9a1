package roster

import (
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const fetchTimeout = 10 * time.Second

// Fetch downloads a roster. JSON responses go through Parse; HTML pages are
// scanned for [data-sprite] elements.
func Fetch(url string) ([]Creature, error) {
	c := colly.NewCollector(
		colly.UserAgent("battle-display/1.0"),
	)
	c.SetRequestTimeout(fetchTimeout)

	var (
		out      []Creature
		parseErr error
	)

	c.OnResponse(func(r *colly.Response) {
		ct := strings.ToLower(r.Headers.Get("Content-Type"))
		if strings.Contains(ct, "json") {
			out, parseErr = Parse(r.Body)
		}
	})

	c.OnHTML(spriteSelector, func(e *colly.HTMLElement) {
		if cr, ok := fromSelection(e.DOM); ok {
			out = append(out, cr)
		}
	})

	if err := c.Visit(url); err != nil {
		return nil, wrap(url, err)
	}
	c.Wait()

	if parseErr != nil {
		return nil, wrap(url, parseErr)
	}
	if len(out) == 0 {
		return nil, wrap(url, ErrEmpty)
	}
	return out, nil
}
