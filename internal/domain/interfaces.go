package domain

// ListItem is the polymorphic interface for items that can be displayed in lists.
// Course, Division and Content implement it directly.
type ListItem interface {
	// GetID returns the unique identifier for this item
	GetID() string

	// GetTitle returns the display title
	GetTitle() string

	// GetDescription returns secondary info for display (price, order, duration)
	GetDescription() string

	// GetItemType returns the type identifier: "course", "division", "video", "pdf"
	GetItemType() string

	// CanDrillDown returns true if this item has child content
	CanDrillDown() bool
}
