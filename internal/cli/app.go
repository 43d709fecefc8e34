// Package cli is a terminal storefront over the Essia API and catalog.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/essia-shop/internal/catalog"
	"github.com/example/essia-shop/internal/storefront"
)

// ProductLister lists catalog products
type ProductLister interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
}

// App is the interactive shell
type App struct {
	session  *storefront.Session
	cart     *storefront.Cart
	enricher *storefront.Enricher
	products ProductLister

	reader *bufio.Reader
	out    io.Writer

	// listing is what the last "products" command showed, so "add" can
	// refer to products by position.
	listing []catalog.Product
}

// NewApp creates a shell reading commands from in and writing to out
func NewApp(session *storefront.Session, cart *storefront.Cart, enricher *storefront.Enricher, products ProductLister, in io.Reader, out io.Writer) *App {
	return &App{
		session:  session,
		cart:     cart,
		enricher: enricher,
		products: products,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

const helpText = `Commands:
  products [sort] [search...]  list products (sort: name, price-low, price-high, newest, oldest, stock, featured)
  login | signup | logout | whoami
  cart                          show the cart
  add <n> [qty]                 add product n from the last listing
  qty <line> <qty>              set a line's quantity (0 removes it)
  rm <line>                     remove a line
  clear                         empty the cart
  checkout                      place an order for the cart
  quit`

// Run reads commands until quit or end of input
func (a *App) Run(ctx context.Context) error {
	if err := a.session.Wait(ctx); err != nil {
		return err
	}
	if u := a.session.User(); u != nil {
		a.printf("Welcome back, %s.\n", u.Name)
	}
	a.printf("Essia storefront (type 'help' for commands)\n")

	for {
		a.printf("%s> ", a.prompt())
		line, err := a.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if quit := a.Execute(ctx, line); quit {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

// Execute runs one command line and reports whether the shell should exit
func (a *App) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd, args := parts[0], parts[1:]

	var err error
	switch cmd {
	case "help":
		a.printf("%s\n", helpText)
	case "products":
		err = a.listProducts(ctx, args)
	case "login":
		err = a.login(ctx)
	case "signup":
		err = a.signup(ctx)
	case "logout":
		err = a.session.Logout(ctx)
		if err == nil {
			a.printf("Logged out.\n")
		}
	case "whoami":
		a.whoami()
	case "cart":
		a.showCart(ctx)
	case "add":
		err = a.add(ctx, args)
	case "qty":
		err = a.setQuantity(ctx, args)
	case "rm":
		err = a.remove(ctx, args)
	case "clear":
		err = a.cart.Clear(ctx)
		if err == nil {
			a.printf("Cart cleared.\n")
		}
	case "checkout":
		err = a.checkout(ctx)
	case "quit", "exit":
		a.printf("Bye!\n")
		return true
	default:
		a.printf("Unknown command %q. Type 'help'.\n", cmd)
	}

	if err != nil {
		a.printf("Error: %s\n", storefront.ErrorMessage(err))
	}
	return false
}

func (a *App) prompt() string {
	if u := a.session.User(); u != nil {
		return fmt.Sprintf("essia (%s) ", u.Email)
	}
	return "essia "
}

func (a *App) listProducts(ctx context.Context, args []string) error {
	all, err := a.products.ListProducts(ctx)
	if err != nil {
		return err
	}

	key := catalog.SortName
	if len(args) > 0 && isSortKey(args[0]) {
		key = catalog.SortKey(args[0])
		args = args[1:]
	}
	a.listing = catalog.Sort(catalog.Filter(all, strings.Join(args, " "), catalog.CategoryAll), key)

	if len(a.listing) == 0 {
		a.printf("No products found.\n")
		return nil
	}
	for i, p := range a.listing {
		stock := ""
		if !p.InStock {
			stock = " (out of stock)"
		}
		a.printf("%3d. %-32s $%s%s\n", i+1, p.Name, p.Price.StringFixed(2), stock)
	}
	return nil
}

func isSortKey(s string) bool {
	switch catalog.SortKey(s) {
	case catalog.SortName, catalog.SortPriceLow, catalog.SortPriceHigh, catalog.SortNewest,
		catalog.SortOldest, catalog.SortStock, catalog.SortFeatured:
		return true
	}
	return false
}

func (a *App) login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	if err := a.session.Login(ctx, email, password); err != nil {
		return err
	}
	a.whoami()
	return nil
}

func (a *App) signup(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	if err := a.session.Register(ctx, name, email, password); err != nil {
		return err
	}
	a.whoami()
	return nil
}

func (a *App) whoami() {
	if u := a.session.User(); u != nil {
		a.printf("Signed in as %s <%s>.\n", u.Name, u.Email)
		return
	}
	a.printf("Not signed in.\n")
}

func (a *App) showCart(ctx context.Context) {
	lines := a.enricher.ForCart(ctx, a.cart)
	if len(lines) == 0 {
		a.printf("Your cart is empty.\n")
		return
	}
	for _, l := range lines {
		a.printf("[%d] %-32s %d x $%s\n", l.LineID, l.Name, l.Quantity, l.Price.StringFixed(2))
	}
	a.printf("%d item(s), total $%s\n", a.cart.Count(), a.cart.Total().StringFixed(2))
}

func (a *App) add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("Usage: add <n> [qty]\n")
		return nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(a.listing) {
		a.printf("No product %q in the last listing. Run 'products' first.\n", args[0])
		return nil
	}
	qty := 1
	if len(args) > 1 {
		if qty, err = strconv.Atoi(args[1]); err != nil || qty < 1 {
			a.printf("Quantity must be a positive number.\n")
			return nil
		}
	}

	p := a.listing[n-1]
	if err := a.cart.Add(ctx, storefront.ItemFromProduct(p, qty)); err != nil {
		return err
	}
	a.printf("Added %d x %s.\n", qty, p.Name)
	return nil
}

func (a *App) setQuantity(ctx context.Context, args []string) error {
	if len(args) != 2 {
		a.printf("Usage: qty <line> <qty>\n")
		return nil
	}
	lineID, err1 := strconv.ParseInt(args[0], 10, 64)
	qty, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		a.printf("Usage: qty <line> <qty>\n")
		return nil
	}
	return a.cart.UpdateQuantity(ctx, lineID, qty)
}

func (a *App) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.printf("Usage: rm <line>\n")
		return nil
	}
	lineID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		a.printf("Usage: rm <line>\n")
		return nil
	}
	return a.cart.Remove(ctx, lineID)
}

func (a *App) checkout(ctx context.Context) error {
	if a.session.User() == nil {
		return storefront.ErrNotSignedIn
	}
	if len(a.cart.Lines()) == 0 {
		a.printf("Your cart is empty.\n")
		return nil
	}

	var form storefront.CheckoutForm
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Full name", &form.CustomerName},
		{"Email", &form.CustomerEmail},
		{"Phone (optional)", &form.CustomerPhone},
		{"Shipping address", &form.ShippingAddress},
	}
	for _, f := range fields {
		v, err := GetSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	order, err := a.cart.Checkout(ctx, form)
	if order != nil {
		a.printf("Order %s placed: subtotal $%s, shipping $%s, total $%s.\n",
			order.ID, order.Subtotal.StringFixed(2), order.Shipping.StringFixed(2), order.Total.StringFixed(2))
	}
	return err
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
