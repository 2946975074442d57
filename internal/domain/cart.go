package domain

// MaxLineQty is the quantity cap the product card enforces. It is a
// presentation policy: Cart.Add itself does not cap, so merged lines may
// exceed it.
const MaxLineQty = 10

// CartLine is one (product, variant) position in a session cart.
type CartLine struct {
	ProductID   string
	VariantID   string
	ProductName string
	UnitPrice   int
	Unit        string
	Quantity    int
	LineTotal   int
}

// Cart is owned by a single chat session. No locking: one user, one
// conversation.
type Cart struct {
	Lines []CartLine
}

// Add merges qty into the existing (productID, variantID) line or appends a
// new one. The unit price recorded on the first add sticks; later adds for
// the same key only grow the quantity, so a catalog price change mid-session
// cannot silently reprice what is already in the cart.
func (c *Cart) Add(productID, variantID, name string, unitPrice int, unit string, qty int) {
	if qty <= 0 {
		return
	}
	for i := range c.Lines {
		l := &c.Lines[i]
		if l.ProductID == productID && l.VariantID == variantID {
			l.Quantity += qty
			l.LineTotal = l.UnitPrice * l.Quantity
			return
		}
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID:   productID,
		VariantID:   variantID,
		ProductName: name,
		UnitPrice:   unitPrice,
		Unit:        unit,
		Quantity:    qty,
		LineTotal:   unitPrice * qty,
	})
}

func (c *Cart) Clear() { c.Lines = nil }

func (c *Cart) Empty() bool { return len(c.Lines) == 0 }

func (c *Cart) Total() int {
	total := 0
	for _, l := range c.Lines {
		total += l.LineTotal
	}
	return total
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}
