package http

import (
	"bytes"
	"net/http"
	"time"

	"github.com/atinyakov/GreenCart/internal/catalog"
	"github.com/atinyakov/GreenCart/internal/sitemap"
)

// SitemapHandler serves /sitemap.xml.
type SitemapHandler struct {
	BaseURL   string
	Directory *catalog.Directory
	// Now defaults to time.Now.
	Now func() time.Time
}

// Sitemap handles GET /sitemap.xml.
func (h *SitemapHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	var buf bytes.Buffer
	if err := sitemap.Encode(&buf, sitemap.Build(h.BaseURL, h.Directory, now())); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(buf.Bytes())
}
