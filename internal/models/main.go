// Package models defines the core data structures shared by the storefront
// server and the terminal client.
package models

import "time"

// User represents a storefront customer registered with the identity provider.
type User struct {
	// Login is the unique sign-in name.
	Login string
	// DisplayName is shown to the user once signed in.
	DisplayName string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
	// Admin grants access to the product administration routes.
	Admin bool
}

// AuthSession is the read-only projection of a signed-in identity-provider session.
type AuthSession struct {
	// UserID is the opaque identifier of the signed-in user.
	UserID string `json:"user_id"`
	// DisplayName is the human-readable name of the user.
	DisplayName string `json:"display_name"`
	// Token is the bearer token that identifies the session.
	Token string `json:"token,omitempty"`
	// ExpiresAt is when the provider stops honoring the token.
	ExpiresAt time.Time `json:"expires_at"`
	// Admin reports whether the user may manage products.
	Admin bool `json:"admin,omitempty"`
}

// State describes a U.S. state the directory covers.
type State struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// Coordinates holds a geographic position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Review is a customer review of a dispensary.
type Review struct {
	Author string `json:"author"`
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

// Dispensary is one synthetically generated directory entry.
type Dispensary struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	State        string      `json:"state"`
	Logo         string      `json:"logo"`
	Rating       string      `json:"rating"`
	DeliveryTime int         `json:"delivery_time"`
	Address      string      `json:"address"`
	Coordinates  Coordinates `json:"coordinates"`
	Hours        string      `json:"hours"`
	Reviews      []Review    `json:"reviews"`
}

// Product is a menu item offered by a dispensary.
type Product struct {
	// ID is the unique identifier for the product.
	ID string `json:"id"`
	// DispensaryID references the dispensary whose menu lists the product.
	DispensaryID string `json:"dispensary_id"`
	// Name is the display name.
	Name string `json:"name"`
	// Category is e.g. "flower", "edible", "vape".
	Category string `json:"category"`
	// Strain is the cultivar name, if any.
	Strain string `json:"strain,omitempty"`
	// THC is the THC percentage as a display string.
	THC string `json:"thc,omitempty"`
	// PriceCents is the unit price in cents.
	PriceCents int64 `json:"price_cents"`
	// ImageURL points at the product picture.
	ImageURL string `json:"image_url,omitempty"`
}

// LineItem is one cart entry: a product and the requested quantity.
type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	// UnitPriceCents is the price captured when the product was first added.
	UnitPriceCents int64 `json:"unit_price_cents"`
}

// Recommendation is one strain suggested by the completion endpoint.
type Recommendation struct {
	Strain string `json:"strain"`
	Reason string `json:"reason"`
}

// ChangeFrequency values used in sitemap entries.
type ChangeFrequency string

const (
	// Daily marks pages expected to change every day.
	Daily ChangeFrequency = "daily"
	// Weekly marks pages expected to change every week.
	Weekly ChangeFrequency = "weekly"
	// Monthly marks pages that rarely change.
	Monthly ChangeFrequency = "monthly"
)

// SitemapEntry is one URL advertised in the sitemap.
type SitemapEntry struct {
	URL             string
	LastModified    time.Time
	ChangeFrequency ChangeFrequency
	Priority        float64
}
