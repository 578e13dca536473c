package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nikolayk812/storefront/internal/account"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/shop"
	"github.com/nikolayk812/storefront/internal/writeback"
)

// ErrUsage is returned for unknown commands and malformed arguments.
var ErrUsage = errors.New("usage")

type Deps struct {
	Shop    *shop.Manager
	Catalog port.Catalog
	Account *account.Service
}

type command struct {
	args string
	help string
	run  func(c *runner, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"products":   {args: "[limit] [offset]", help: "list catalog products", run: (*runner).products},
	"product":    {args: "<id>", help: "show one product", run: (*runner).product},
	"categories": {help: "list categories", run: (*runner).categories},
	"search":     {args: "[-category id] [-min n] [-max n] [title] [band]", help: "search by title, category, price range and band (under50|50to200|above200)", run: (*runner).search},
	"view":       {args: "<id>", help: "show a product and record it as recently viewed", run: (*runner).view},
	"add":        {args: "<id>", help: "add a product to the cart", run: (*runner).add},
	"remove":     {args: "<id>", help: "remove a product from the cart", run: (*runner).remove},
	"inc":        {args: "<id>", help: "increase quantity", run: (*runner).inc},
	"dec":        {args: "<id>", help: "decrease quantity, removing at one", run: (*runner).dec},
	"cart":       {help: "show the cart", run: (*runner).cart},
	"checkout":   {help: "place the order and empty the cart", run: (*runner).checkout},
	"wish":       {args: "<id>", help: "add a product to the wishlist", run: (*runner).wish},
	"unwish":     {args: "<id>", help: "remove a product from the wishlist", run: (*runner).unwish},
	"wishlist":   {help: "show the wishlist", run: (*runner).wishlist},
	"register":   {args: "<first> <last> <email> <password>", help: "create an account", run: (*runner).register},
	"login":      {args: "<email> <password>", help: "sign in", run: (*runner).login},
	"whoami":     {help: "show the signed-in user", run: (*runner).whoami},
	"logout":     {help: "sign out", run: (*runner).logout},
	"reset":      {help: "clear cart, wishlist and the signed-in user", run: (*runner).reset},
}

type runner struct {
	deps Deps
	r    renderer
}

// Run executes one subcommand. args[0] is the command name.
func Run(ctx context.Context, deps Deps, args []string, out io.Writer) error {
	if len(args) == 0 {
		Usage(out)
		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	cmd, ok := commands[args[0]]
	if !ok {
		Usage(out)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}

	c := &runner{deps: deps, r: renderer{out: out, st: defaultStyles()}}
	return cmd.run(c, ctx, args[1:])
}

// Usage prints the command list.
func Usage(out io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	_, _ = fmt.Fprintln(out, "usage: storefront [-config path] <command> [args]")
	_, _ = fmt.Fprintln(out)
	for _, name := range names {
		cmd := commands[name]
		_, _ = fmt.Fprintf(out, "  %-50s %s\n", strings.TrimSpace(name+" "+cmd.args), cmd.help)
	}
}

func (c *runner) products(ctx context.Context, args []string) error {
	page := catalog.DefaultPage
	if len(args) > 0 {
		n, err := parseInt(args[0], "limit")
		if err != nil {
			return err
		}
		page.Limit = n
	}
	if len(args) > 1 {
		n, err := parseInt(args[1], "offset")
		if err != nil {
			return err
		}
		page.Offset = n
	}

	items, err := c.deps.Catalog.Products(ctx, page)
	if err != nil {
		return fmt.Errorf("catalog.Products: %w", err)
	}
	c.r.products("Products", items)
	return nil
}

func (c *runner) product(ctx context.Context, args []string) error {
	p, err := c.fetch(ctx, args)
	if err != nil {
		return err
	}
	c.r.product(p)
	return nil
}

func (c *runner) categories(ctx context.Context, _ []string) error {
	items, err := c.deps.Catalog.Categories(ctx)
	if err != nil {
		return fmt.Errorf("catalog.Categories: %w", err)
	}
	c.r.categories(items)
	return nil
}

func (c *runner) search(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	category := fs.Int("category", 0, "category id")
	priceMin := fs.Int("min", 0, "minimum price")
	priceMax := fs.Int("max", 0, "maximum price")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: search: %w", ErrUsage, err)
	}

	filter := port.ProductFilter{
		CategoryID: *category,
		PriceMin:   *priceMin,
		PriceMax:   *priceMax,
	}
	rest := fs.Args()
	if len(rest) > 0 {
		filter.Title = rest[0]
	}
	if len(rest) > 1 {
		filter.Band = port.PriceBand(rest[1])
	}

	if filter.Title == "" && filter.CategoryID == 0 && filter.PriceMin == 0 && filter.PriceMax == 0 {
		return fmt.Errorf("%w: search needs a title, -category, -min or -max", ErrUsage)
	}
	if filter.CategoryID < 0 || filter.PriceMin < 0 || filter.PriceMax < 0 {
		return fmt.Errorf("%w: search filters must not be negative", ErrUsage)
	}

	items, err := c.deps.Catalog.FilterProducts(ctx, filter)
	if err != nil {
		return fmt.Errorf("catalog.FilterProducts: %w", err)
	}
	c.r.products(searchTitle(filter), items)
	return nil
}

func searchTitle(f port.ProductFilter) string {
	var parts []string
	if f.Title != "" {
		parts = append(parts, strconv.Quote(f.Title))
	}
	if f.CategoryID > 0 {
		parts = append(parts, "category "+strconv.Itoa(f.CategoryID))
	}
	if f.PriceMin > 0 || f.PriceMax > 0 {
		parts = append(parts, fmt.Sprintf("price %d..%d", f.PriceMin, f.PriceMax))
	}
	return "Results for " + strings.Join(parts, ", ")
}

func (c *runner) view(ctx context.Context, args []string) error {
	p, err := c.fetch(ctx, args)
	if err != nil {
		return err
	}
	c.deps.Shop.AddRecentlyViewed(p)

	c.r.product(p)
	c.r.line("")
	c.r.products("Recently viewed", c.deps.Shop.RecentlyViewed())
	return nil
}

func (c *runner) add(ctx context.Context, args []string) error {
	p, err := c.fetch(ctx, args)
	if err != nil {
		return err
	}

	c.settle(ctx, c.deps.Shop.AddToCart(p))
	c.r.ok("added %s", p.Title)
	c.r.cart(c.deps.Shop.Snapshot())
	return nil
}

func (c *runner) remove(ctx context.Context, args []string) error {
	return c.cartOp(ctx, args, "removed", c.deps.Shop.RemoveFromCart)
}

func (c *runner) inc(ctx context.Context, args []string) error {
	return c.cartOp(ctx, args, "increased", c.deps.Shop.IncreaseQuantity)
}

func (c *runner) dec(ctx context.Context, args []string) error {
	return c.cartOp(ctx, args, "decreased", c.deps.Shop.DecreaseQuantity)
}

func (c *runner) cartOp(ctx context.Context, args []string, verb string, op func(id int) *writeback.Ack) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	if _, ok := c.deps.Shop.Cart().Line(id); !ok {
		c.r.warn("product %d is not in the cart", id)
	} else {
		c.settle(ctx, op(id))
		c.r.ok("%s %d", verb, id)
	}
	c.r.cart(c.deps.Shop.Snapshot())
	return nil
}

func (c *runner) cart(_ context.Context, _ []string) error {
	c.r.cart(c.deps.Shop.Snapshot())
	return nil
}

func (c *runner) checkout(ctx context.Context, _ []string) error {
	total := c.deps.Shop.Snapshot().Total

	lines, ack := c.deps.Shop.Checkout()
	if len(lines) == 0 {
		c.r.warn("cart is empty, nothing to check out")
		return nil
	}
	c.settle(ctx, ack)

	c.r.lines("Order placed", lines, total)
	c.r.ok("thank you for your purchase")
	return nil
}

func (c *runner) wish(ctx context.Context, args []string) error {
	p, err := c.fetch(ctx, args)
	if err != nil {
		return err
	}

	if c.deps.Shop.InWishlist(p.ID) {
		c.r.warn("%s is already in the wishlist", p.Title)
		return nil
	}
	c.settle(ctx, c.deps.Shop.AddToWishlist(p))
	c.r.ok("saved %s", p.Title)
	return nil
}

func (c *runner) unwish(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	if !c.deps.Shop.InWishlist(id) {
		c.r.warn("product %d is not in the wishlist", id)
		return nil
	}
	c.settle(ctx, c.deps.Shop.RemoveFromWishlist(id))
	c.r.ok("removed %d from the wishlist", id)
	return nil
}

func (c *runner) wishlist(_ context.Context, _ []string) error {
	c.r.products("Wishlist", c.deps.Shop.Wishlist().Entries)
	return nil
}

func (c *runner) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: login <email> <password>", ErrUsage)
	}

	user, err := c.deps.Account.Login(ctx, args[0], args[1])
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidCredentials) {
			c.r.warn("invalid credentials")
		}
		return err
	}
	c.r.ok("welcome %s", user.DisplayName())
	return nil
}

func (c *runner) register(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("%w: register <first> <last> <email> <password>", ErrUsage)
	}

	user, err := c.deps.Account.Register(ctx, domain.NewUser{
		FirstName: args[0],
		LastName:  args[1],
		Email:     args[2],
		Password:  args[3],
	})
	if err != nil {
		if errors.Is(err, account.ErrValidation) {
			c.r.warn("%v", err)
		}
		return err
	}
	c.r.ok("registered %s, sign in with login", user.DisplayName())
	return nil
}

func (c *runner) whoami(ctx context.Context, _ []string) error {
	user, err := c.deps.Account.Current(ctx)
	if err != nil {
		return fmt.Errorf("account.Current: %w", err)
	}
	if user == nil {
		c.r.line("%s", c.r.st.Muted.Render("not signed in"))
		return nil
	}

	c.r.title(user.DisplayName())
	c.r.line("email:  %s", user.Email)
	if user.Role != "" {
		c.r.line("role:   %s", user.Role)
	}
	return nil
}

func (c *runner) logout(ctx context.Context, _ []string) error {
	if err := c.deps.Account.Logout(ctx); err != nil {
		return err
	}
	c.r.ok("signed out")
	return nil
}

func (c *runner) reset(ctx context.Context, _ []string) error {
	if err := c.deps.Shop.Reset(ctx, account.UserKey); err != nil {
		return fmt.Errorf("shop.Reset: %w", err)
	}
	c.r.ok("cart, wishlist and account cleared")
	return nil
}

func (c *runner) fetch(ctx context.Context, args []string) (p domain.Product, err error) {
	id, err := parseID(args)
	if err != nil {
		return p, err
	}
	p, err = c.deps.Catalog.Product(ctx, id)
	if err != nil {
		return p, fmt.Errorf("catalog.Product: %w", err)
	}
	return p, nil
}

// settle waits for a persist so the process does not exit before it lands.
// A failed persist leaves the in-memory state as is and is only reported.
func (c *runner) settle(ctx context.Context, ack *writeback.Ack) {
	if err := ack.Wait(ctx); err != nil {
		c.r.warn("not saved: %v", err)
	}
}

func parseID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: product id required", ErrUsage)
	}
	return parseInt(args[0], "product id")
}

func parseInt(raw, what string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrUsage, what, raw)
	}
	return n, nil
}
