package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/shop"
)

type renderer struct {
	out io.Writer
	st  styles
}

func (r renderer) line(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format+"\n", args...)
}

func (r renderer) title(text string) {
	r.line("%s", r.st.Title.Render(text))
}

func (r renderer) ok(format string, args ...any) {
	r.line("%s", r.st.OK.Render(fmt.Sprintf(format, args...)))
}

func (r renderer) warn(format string, args ...any) {
	r.line("%s", r.st.Warn.Render(fmt.Sprintf(format, args...)))
}

func (r renderer) products(title string, items []domain.Product) {
	r.title(fmt.Sprintf("%s (%d)", title, len(items)))
	if len(items) == 0 {
		r.line("%s", r.st.Muted.Render("nothing here"))
		return
	}

	rows := make([][]string, 0, len(items))
	for _, p := range items {
		rows = append(rows, []string{
			strconv.Itoa(p.ID),
			p.Title,
			p.Price.StringFixed(2),
			p.Category.Name,
		})
	}
	r.line("%s", r.st.table([]string{"ID", "Title", "Price", "Category"}, rows))
}

func (r renderer) product(p domain.Product) {
	r.title(p.Title)
	r.line("id:        %d", p.ID)
	r.line("price:     %s", p.Price.StringFixed(2))
	if p.Category.Name != "" {
		r.line("category:  %s", p.Category.Name)
	}
	if p.Brand != "" {
		r.line("brand:     %s", p.Brand)
	}
	if p.Rating != nil {
		r.line("rating:    %.1f", *p.Rating)
	}
	if p.Stock != nil {
		r.line("stock:     %d", *p.Stock)
	}
	if img := p.Thumbnail(); img != "" {
		r.line("image:     %s", r.st.Muted.Render(img))
	}
	if desc := strings.TrimSpace(p.Description); desc != "" {
		r.line("")
		r.line("%s", desc)
	}
}

func (r renderer) categories(items []domain.Category) {
	r.title(fmt.Sprintf("Categories (%d)", len(items)))

	rows := make([][]string, 0, len(items))
	for _, c := range items {
		id := ""
		if c.ID > 0 {
			id = strconv.Itoa(c.ID)
		}
		rows = append(rows, []string{id, c.Name, c.Slug})
	}
	r.line("%s", r.st.table([]string{"ID", "Name", "Slug"}, rows))
}

func (r renderer) lines(title string, lines []domain.CartLine, total domain.Money) {
	r.title(title)
	if len(lines) == 0 {
		r.line("%s", r.st.Muted.Render("cart is empty"))
		return
	}

	count := 0
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		count += l.Quantity
		rows = append(rows, []string{
			strconv.Itoa(l.ID),
			l.Title,
			strconv.Itoa(l.Quantity),
			l.Price.StringFixed(2),
			l.LineTotal().StringFixed(2),
		})
	}
	r.line("%s", r.st.table([]string{"ID", "Title", "Qty", "Price", "Line"}, rows))
	r.line("items: %d  total: %s", count, r.st.OK.Render(total.String()))
}

func (r renderer) cart(s shop.Snapshot) {
	r.lines("Cart", s.Cart.Lines, s.Total)
}
