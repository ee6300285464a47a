package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// OwnerKey identifies whose catalog a cache record belongs to.
// For teachers this is the email they signed in with.
type OwnerKey string

// Normalize returns the canonical form used for map keys
func (o OwnerKey) Normalize() OwnerKey {
	return OwnerKey(strings.ToLower(strings.TrimSpace(string(o))))
}

// Valid reports whether the key can partition cache state
func (o OwnerKey) Valid() bool {
	return o.Normalize() != ""
}

// ContentType distinguishes playable lectures from documents
type ContentType string

const (
	ContentTypeVideo ContentType = "VIDEO"
	ContentTypePDF   ContentType = "PDF"
)

// ContentCategory groups contents inside a division
type ContentCategory string

const (
	CategoryLectures  ContentCategory = "LECTURES"
	CategoryNotes     ContentCategory = "NOTES"
	CategoryResources ContentCategory = "RESOURCES"
)

// Course is the root of a teacher's catalog
type Course struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	ThumbnailURL string  `json:"thumbnailUrl,omitempty"`
}

// FormattedPrice returns the price for display ("Free" for zero)
func (c Course) FormattedPrice() string {
	if c.Price <= 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", c.Price)
}

func (c Course) GetID() string          { return strconv.FormatInt(c.ID, 10) }
func (c Course) GetTitle() string       { return c.Name }
func (c Course) GetItemType() string    { return "course" }
func (c Course) GetDescription() string { return c.FormattedPrice() }
func (c Course) CanDrillDown() bool     { return true }

// Division is an ordered section of a course (a module, a week, a chapter)
type Division struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

func (d Division) GetID() string          { return strconv.FormatInt(d.ID, 10) }
func (d Division) GetTitle() string       { return d.Title }
func (d Division) GetItemType() string    { return "division" }
func (d Division) GetDescription() string { return fmt.Sprintf("#%d", d.Order) }
func (d Division) CanDrillDown() bool     { return true }

// Content is a single file attached to a division
type Content struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Type     ContentType     `json:"type"`
	Category ContentCategory `json:"category"`
	FileURL  string          `json:"fileUrl"`
	Duration int             `json:"duration,omitempty"` // seconds, videos only
}

// FormattedDuration returns the duration in a human-readable format
func (c Content) FormattedDuration() string {
	if c.Type != ContentTypeVideo || c.Duration <= 0 {
		return ""
	}
	h := c.Duration / 3600
	m := (c.Duration % 3600) / 60
	s := c.Duration % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

func (c Content) GetID() string       { return strconv.FormatInt(c.ID, 10) }
func (c Content) GetTitle() string    { return c.Title }
func (c Content) GetItemType() string { return strings.ToLower(string(c.Type)) }
func (c Content) CanDrillDown() bool  { return false }

func (c Content) GetDescription() string {
	if d := c.FormattedDuration(); d != "" {
		return d
	}
	return strings.ToLower(string(c.Category))
}
