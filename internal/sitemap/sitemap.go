// Package sitemap builds the storefront sitemap from the static routes and
// the generated dispensary directory.
//
// The listed pages belong to the browser storefront, which is hosted apart
// from the API server. The base URL passed to Build must be that frontend's
// origin.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atinyakov/GreenCart/internal/catalog"
	"github.com/atinyakov/GreenCart/internal/models"
)

// staticRoutes are the pages that exist independently of the directory.
var staticRoutes = []struct {
	path     string
	freq     models.ChangeFrequency
	priority float64
}{
	{"/", models.Daily, 1.0},
	{"/states", models.Weekly, 0.9},
	{"/recommendations", models.Monthly, 0.5},
	{"/cart", models.Monthly, 0.3},
}

// Build lists static routes, one entry per state and one per dispensary.
// Dispensary URLs use catalog.MenuRoute so they always match generated ids.
func Build(baseURL string, dir *catalog.Directory, now time.Time) []models.SitemapEntry {
	base := strings.TrimRight(baseURL, "/")
	states := dir.States()
	ids := dir.IDs()

	entries := make([]models.SitemapEntry, 0, len(staticRoutes)+len(states)+len(ids))
	for _, r := range staticRoutes {
		entries = append(entries, models.SitemapEntry{
			URL: base + r.path, LastModified: now, ChangeFrequency: r.freq, Priority: r.priority,
		})
	}
	for _, st := range states {
		entries = append(entries, models.SitemapEntry{
			URL: base + catalog.StateRoute(st), LastModified: now, ChangeFrequency: models.Weekly, Priority: 0.8,
		})
	}
	for _, id := range ids {
		entries = append(entries, models.SitemapEntry{
			URL: base + catalog.MenuRoute(id), LastModified: now, ChangeFrequency: models.Daily, Priority: 0.6,
		})
	}
	return entries
}

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Encode writes entries as a sitemaps.org urlset document.
func Encode(w io.Writer, entries []models.SitemapEntry) error {
	doc := urlset{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9", URLs: make([]xmlURL, 0, len(entries))}
	for _, e := range entries {
		doc.URLs = append(doc.URLs, xmlURL{
			Loc:        e.URL,
			LastMod:    e.LastModified.UTC().Format(time.RFC3339),
			ChangeFreq: string(e.ChangeFrequency),
			Priority:   fmt.Sprintf("%.1f", e.Priority),
		})
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	return enc.Flush()
}
