package domain

import "context"

// Category is one row of the Categories sheet.
type Category struct {
	ID   string `gorm:"primaryKey;size:40"`
	Name string `gorm:"size:140"`
}

// PriceSlot is one raw (price, unit) pair as read from the catalog row.
// Values stay untyped strings at this level; ResolveVariants decides what
// is purchasable.
type PriceSlot struct {
	Price string `gorm:"size:40"`
	Unit  string `gorm:"size:40"`
}

// Product is a read-only catalog record. The catalog sheet owns it; the bot
// never writes products back.
type Product struct {
	ID          string `gorm:"primaryKey;size:40"`
	CategoryID  string `gorm:"size:40;index"`
	Name        string `gorm:"size:180"`
	Description string `gorm:"type:text"`
	Image       string `gorm:"size:255"`

	// Primary price/unit plus up to four secondary pairs. Incomplete or
	// malformed pairs are allowed here and filtered by ResolveVariants.
	Price string `gorm:"size:40"`
	Unit  string `gorm:"size:40"`

	Extra1 PriceSlot `gorm:"embedded;embeddedPrefix:extra1_"`
	Extra2 PriceSlot `gorm:"embedded;embeddedPrefix:extra2_"`
	Extra3 PriceSlot `gorm:"embedded;embeddedPrefix:extra3_"`
	Extra4 PriceSlot `gorm:"embedded;embeddedPrefix:extra4_"`
}

// ExtraSlots returns the secondary pairs in declaration order.
func (p *Product) ExtraSlots() []PriceSlot {
	return []PriceSlot{p.Extra1, p.Extra2, p.Extra3, p.Extra4}
}

type CatalogRepo interface {
	Categories(ctx context.Context) ([]Category, error)
	ProductsByCategory(ctx context.Context, categoryID string) ([]Product, error)
	ProductByID(ctx context.Context, id string) (*Product, error)
}
