// Package civitatis extracts activity cards from the public Civitatis city
// listing pages.
package civitatis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"trip_planner/internal/adapters/transport"
	"trip_planner/internal/domain"
)

// Defaults for fields the listing card does not carry.
const (
	NoTitle   = "Título no disponible"
	NoLink    = "Enlace no disponible"
	NoImage   = "Imagen no disponible"
	NoRating  = "Sin calificación"
	NoReviews = "0"
	FreePrice = "Gratis"
)

const (
	cardSel    = "article.compact-card, article.comfort-card"
	titleSel   = ".compact-card__title, .comfort-card__title"
	linkSel    = "a.compact-card__link, a._activity-link, a.ga-trackEvent-element"
	imageSel   = ".compact-card__img img, .comfort-card__img img"
	ratingSel  = ".m-rating--text"
	reviewsSel = ".text--rating-total"
	priceSel   = ".compact-card__price__text, .comfort-card__price__text"
)

var spaces = regexp.MustCompile(`\s+`)

type Client struct {
	base string
	tr   *transport.Client
}

func New(base string, rps int, timeout time.Duration) *Client {
	return &Client{base: strings.TrimRight(base, "/"), tr: transport.New("civitatis", rps, timeout)}
}

// Slug is the listing path segment for a city display name.
func Slug(city string) string {
	return spaces.ReplaceAllString(strings.ToLower(city), "-")
}

// Activities returns up to limit activity cards for city.
func (c *Client) Activities(ctx context.Context, city string, limit int) ([]domain.ActivityRecord, error) {
	if strings.TrimSpace(city) == "" {
		return nil, errors.New("civitatis: city is required")
	}
	u := fmt.Sprintf("%s/es/%s/", c.base, Slug(city))

	resp, err := c.tr.Do(ctx, "city_listing", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/html")
		req.Header.Set("Accept-Language", "es")
		req.Header.Set("User-Agent", "trip-planner/1.0")
		return req, nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("city %q: %w", city, domain.ErrCityNotListed)
	}
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := c.parse(io.LimitReader(resp.Body, 8<<20), limit)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("city %q: %w", city, domain.ErrNoActivities)
	}
	return out, nil
}

func (c *Client) parse(r io.Reader, limit int) ([]domain.ActivityRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("civitatis parse: %w", err)
	}

	var out []domain.ActivityRecord
	doc.Find(cardSel).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}
		out = append(out, domain.ActivityRecord{
			Title:       orDefault(strings.TrimSpace(card.Find(titleSel).Text()), NoTitle),
			Link:        c.link(card),
			ImageURL:    c.image(card),
			Rating:      rating(card),
			ReviewCount: reviews(card),
			Price:       orDefault(strings.TrimSpace(card.Find(priceSel).Text()), FreePrice),
		})
		return true
	})
	return out, nil
}

func (c *Client) absolute(ref string) string {
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	return c.base + ref
}

func (c *Client) link(card *goquery.Selection) string {
	if href, ok := card.Find(linkSel).Attr("href"); ok && href != "" {
		return c.absolute(href)
	}
	return NoLink
}

func (c *Client) image(card *goquery.Selection) string {
	img := card.Find(imageSel)
	if img.Length() == 0 {
		return NoImage
	}
	for _, attr := range []string{"data-src", "data-src-mobile", "src"} {
		if v, ok := img.Attr(attr); ok && v != "" {
			return c.absolute(v)
		}
	}
	return NoImage
}

func rating(card *goquery.Selection) string {
	raw := strings.TrimSpace(card.Find(ratingSel).First().Text())
	if raw == "" || strings.Contains(strings.ToLower(raw), "sin valorar") {
		return NoRating
	}
	return strings.TrimSpace(strings.Replace(spaces.ReplaceAllString(raw, " "), "/ 10", "", 1))
}

func reviews(card *goquery.Selection) string {
	raw := strings.TrimSpace(card.Find(reviewsSel).First().Text())
	if raw == "" || strings.Contains(strings.ToLower(raw), "sin valorar") {
		return NoReviews
	}
	s := spaces.ReplaceAllString(raw, " ")
	s = strings.Replace(s, "opiniones", "", 1)
	s = strings.Replace(s, ".", "", 1)
	return orDefault(strings.TrimSpace(s), NoReviews)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
