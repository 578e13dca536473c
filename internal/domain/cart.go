package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// CartLine is a product snapshot plus the quantity in the cart.
// Quantity is always >= 1 for a line that is part of a Cart.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds at most one line per product id, in insertion order.
type Cart struct {
	Lines []CartLine
}

func NewCart(lines []CartLine) Cart {
	c := Cart{Lines: cloneLines(lines)}
	c.Normalize()
	return c
}

// Add increments the quantity of the matching line or appends a new line
// with quantity 1.
func (c *Cart) Add(p Product) {
	if idx := c.index(p.ID); idx >= 0 {
		c.Lines[idx].Quantity++
		return
	}
	c.Lines = append(c.Lines, CartLine{Product: cloneProduct(p), Quantity: 1})
}

// Remove drops the line for id. It reports whether a line was removed.
func (c *Cart) Remove(id int) bool {
	idx := c.index(id)
	if idx < 0 {
		return false
	}
	c.Lines = removeLine(c.Lines, idx)
	return true
}

func (c *Cart) Increase(id int) bool {
	idx := c.index(id)
	if idx < 0 {
		return false
	}
	c.Lines[idx].Quantity++
	return true
}

// Decrease decrements the quantity of the line for id and removes the line
// once the quantity would reach zero.
func (c *Cart) Decrease(id int) bool {
	idx := c.index(id)
	if idx < 0 {
		return false
	}
	if c.Lines[idx].Quantity <= 1 {
		c.Lines = removeLine(c.Lines, idx)
		return true
	}
	c.Lines[idx].Quantity--
	return true
}

func (c Cart) Line(id int) (CartLine, bool) {
	idx := c.index(id)
	if idx < 0 {
		return CartLine{}, false
	}
	return c.Lines[idx], true
}

// Count is the number of units in the cart, not the number of lines.
func (c Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

func (c Cart) Total(unit currency.Unit) Money {
	total := NewMoney(decimal.Zero, unit)
	for _, l := range c.Lines {
		total = total.Add(NewMoney(l.Price, unit).Mul(l.Quantity))
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Normalize merges lines sharing a product id (summing quantities, first
// position wins) and drops lines with a non-positive quantity.
func (c *Cart) Normalize() {
	if len(c.Lines) == 0 {
		c.Lines = nil
		return
	}

	merged := make([]CartLine, 0, len(c.Lines))
	pos := make(map[int]int, len(c.Lines))

	for _, l := range c.Lines {
		if l.Quantity <= 0 {
			continue
		}
		if i, ok := pos[l.ID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		pos[l.ID] = len(merged)
		merged = append(merged, l)
	}

	if len(merged) == 0 {
		merged = nil
	}
	c.Lines = merged
}

// Merge folds other into c: matching ids sum their quantities, new ids are
// appended after the existing lines.
func (c *Cart) Merge(other Cart) {
	c.Lines = append(c.Lines, cloneLines(other.Lines)...)
	c.Normalize()
}

func (c Cart) Clone() Cart {
	return Cart{Lines: cloneLines(c.Lines)}
}

func (c Cart) index(id int) int {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return i
		}
	}
	return -1
}

func removeLine(lines []CartLine, idx int) []CartLine {
	out := make([]CartLine, 0, len(lines)-1)
	out = append(out, lines[:idx]...)
	out = append(out, lines[idx+1:]...)
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneLines(lines []CartLine) []CartLine {
	if len(lines) == 0 {
		return nil
	}
	dup := make([]CartLine, len(lines))
	for i, l := range lines {
		dup[i] = CartLine{Product: cloneProduct(l.Product), Quantity: l.Quantity}
	}
	return dup
}

func cloneProduct(p Product) Product {
	if p.Images != nil {
		p.Images = append([]string(nil), p.Images...)
	}
	if p.Stock != nil {
		stock := *p.Stock
		p.Stock = &stock
	}
	if p.Rating != nil {
		rating := *p.Rating
		p.Rating = &rating
	}
	return p
}
