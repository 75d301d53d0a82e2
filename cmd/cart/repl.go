package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nikolayk812/cartengine/internal/catalog"
	"github.com/nikolayk812/cartengine/internal/checkout"
	"github.com/nikolayk812/cartengine/internal/domain"
	"github.com/nikolayk812/cartengine/internal/service"
	"golang.org/x/text/language"
)

const help = `commands:
  login <code>            start a session
  logout                  end the session
  list [category] [term]  show products
  add <id> [qty]          add to cart
  set <id> <qty>          overwrite quantity
  inc <id> | dec <id>     step quantity
  rm <id>                 remove line
  clear                   empty the cart
  cart                    show the cart
  checkout                submit the order
  quit`

var errQuit = errors.New("quit")

type repl struct {
	shop    *service.Shop
	index   *catalog.Index
	pricing domain.Pricing
	locale  language.Tag
	out     io.Writer
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	r.prompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		err := r.exec(ctx, strings.Fields(scanner.Text()))
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
		r.prompt()
	}

	return scanner.Err()
}

func (r *repl) prompt() {
	if session, ok := r.shop.Session(); ok {
		fmt.Fprintf(r.out, "%s> ", session.DisplayCode())
		return
	}
	fmt.Fprint(r.out, "> ")
}

func (r *repl) exec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}

	cmd, args := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "quit", "exit":
		return errQuit
	case "help":
		fmt.Fprintln(r.out, help)
		return nil
	case "login":
		if len(args) != 1 {
			return fmt.Errorf("usage: login <code>")
		}
		session, err := r.shop.Login(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Olá, %s (%s)\n", session.DisplayName, session.DisplayCode())
		return nil
	case "logout":
		r.shop.Logout()
		return nil
	case "list":
		r.list(args)
		return nil
	case "cart":
		r.printCart()
		return nil
	case "checkout":
		return r.checkout(ctx)
	}

	if _, ok := r.shop.Session(); !ok {
		return fmt.Errorf("login first")
	}

	switch cmd {
	case "add":
		if len(args) < 1 {
			return fmt.Errorf("usage: add <id> [qty]")
		}
		qty := 1
		if len(args) > 1 {
			qty = ParseQuantity(args[1])
		}
		return r.shop.AddToCart(ctx, args[0], qty)
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("usage: set <id> <qty>")
		}
		return r.shop.SetQuantity(ctx, args[0], ParseQuantity(args[1]))
	case "inc", "dec", "rm":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <id>", cmd)
		}
		switch cmd {
		case "inc":
			return r.shop.Increment(ctx, args[0])
		case "dec":
			return r.shop.Decrement(ctx, args[0])
		default:
			return r.shop.RemoveFromCart(ctx, args[0])
		}
	case "clear":
		return r.shop.ClearCart(ctx)
	}

	return fmt.Errorf("unknown command %q, try help", cmd)
}

func (r *repl) list(args []string) {
	category := catalog.AllCategories
	term := ""
	if len(args) > 0 {
		category = args[0]
	}
	if len(args) > 1 {
		term = strings.Join(args[1:], " ")
	}

	products := r.index.Search(term, category)
	if len(products) == 0 {
		fmt.Fprintln(r.out, "no products")
		return
	}

	for _, p := range products {
		fmt.Fprintf(r.out, "%-8s %-30s %12s  [%s]\n", p.ID, p.Name, p.Price(r.pricing).Format(r.locale), p.Category)
	}
}

func (r *repl) printCart() {
	cart := r.shop.Cart()
	if cart == nil {
		fmt.Fprintln(r.out, "no session")
		return
	}

	lines, totals := cart.Snapshot()
	if len(lines) == 0 {
		fmt.Fprintln(r.out, "cart is empty")
		return
	}

	for _, l := range lines {
		fmt.Fprintf(r.out, "%-8s %-30s x%-4d %12s\n",
			l.Product.ID, l.Product.Name, l.Quantity, l.Amount(cart.Pricing()).Format(r.locale))
	}
	fmt.Fprintf(r.out, "subtotal %s\n", totals.Subtotal.Format(r.locale))
	fmt.Fprintf(r.out, "tax      %s\n", totals.Tax.Format(r.locale))
	fmt.Fprintf(r.out, "total    %s\n", totals.Total.Format(r.locale))
}

func (r *repl) checkout(ctx context.Context) error {
	result, err := r.shop.Checkout(ctx)
	switch result.State {
	case checkout.StateSucceeded, checkout.StateFailedLocalFallback:
		fmt.Fprintln(r.out, result.Message)
	case checkout.StateIdle:
		fmt.Fprintln(r.out, "nothing to submit")
	}
	return err
}

// badge prints the distinct line count after every cart change.
func (r *repl) badge(event domain.CartEvent) {
	fmt.Fprintf(r.out, "[cart: %d]\n", event.LineCount)
}

type consoleBusy struct {
	out io.Writer
}

func (b consoleBusy) SetBusy(busy bool) {
	if busy {
		fmt.Fprintln(b.out, "Enviando...")
	}
}
