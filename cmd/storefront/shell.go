package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/MrEthical07/storefront"
	"github.com/MrEthical07/storefront/cart"
)

type command struct {
	usage string
	args  int
	run   func(ctx context.Context, sh *shell, args []string) error
}

var errUsage = errors.New("usage")

var commands = map[string]command{
	"login":    {"login <email> <password>", 2, cmdLogin},
	"logout":   {"logout", 0, cmdLogout},
	"whoami":   {"whoami", 0, cmdWhoami},
	"open":     {"open <path>", 1, cmdOpen},
	"products": {"products [query]", -1, cmdProducts},
	"cart":     {"cart", 0, cmdCart},
	"add":      {"add <product-id>", 1, cmdAdd},
	"qty":      {"qty <product-id> <quantity>", 2, cmdQuantity},
	"remove":   {"remove <product-id>", 1, cmdRemove},
	"clear":    {"clear", 0, cmdClear},
	"wishlist": {"wishlist", 0, cmdWishlist},
	"wish":     {"wish <product-id>", 1, cmdWish},
	"unwish":   {"unwish <product-id>", 1, cmdUnwish},
	"move":     {"move <product-id>", 1, cmdMove},
	"checkout": {"checkout", 0, cmdCheckout},
	"lowstock": {"lowstock", 0, cmdLowStock},
	"export":   {"export <file.csv>", 1, cmdExport},
	"watch":    {"watch", 0, cmdWatch},
}

type shell struct {
	client *storefront.Client
	out    io.Writer
}

func (sh *shell) repl(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := sh.exec(ctx, fields); err != nil {
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return scanner.Err()
}

func (sh *shell) exec(ctx context.Context, fields []string) error {
	if fields[0] == "help" {
		sh.help()
		return nil
	}
	cmd, ok := commands[fields[0]]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	args := fields[1:]
	if cmd.args >= 0 && len(args) != cmd.args {
		return fmt.Errorf("%w: %s", errUsage, cmd.usage)
	}
	return cmd.run(ctx, sh, args)
}

func (sh *shell) printf(format string, a ...any) {
	fmt.Fprintf(sh.out, format, a...)
}

func (sh *shell) notice(n cart.Notice, err error) error {
	if err != nil {
		return err
	}
	if n.Message != "" {
		sh.printf("%s\n", n.Message)
	}
	return nil
}

func cmdLogin(ctx context.Context, sh *shell, args []string) error {
	out, err := sh.client.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	sh.printf("%s\nlogged in as %s (%s), home %s\n", out.Message, out.Profile.Name, out.Role, out.Home)
	return nil
}

func cmdLogout(ctx context.Context, sh *shell, _ []string) error {
	return sh.client.Logout(ctx)
}

func cmdWhoami(_ context.Context, sh *shell, _ []string) error {
	st := sh.client.Session()
	if !st.Authenticated {
		sh.printf("not logged in\n")
		return nil
	}
	sh.printf("%s <%s> role=%s permissions=%q\n", st.Profile.Name, st.Profile.Email, st.Role, st.Permissions)
	return nil
}

func cmdOpen(_ context.Context, sh *shell, args []string) error {
	d := sh.client.Authorize(args[0])
	sh.printf("%s %s\n", d.Kind, args[0])
	return nil
}

func cmdProducts(ctx context.Context, sh *shell, args []string) error {
	if _, err := sh.client.RefreshCatalog(ctx); err != nil {
		return err
	}
	products := sh.client.Catalog().Search(strings.Join(args, " "), "")
	tw := tabwriter.NewWriter(sh.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMODEL\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Model, p.UnitPrice.StringFixed(2), p.AvailableStock)
	}
	return tw.Flush()
}

func cmdCart(_ context.Context, sh *shell, _ []string) error {
	items := sh.client.CartItems()
	if len(items) == 0 {
		sh.printf("cart is empty\n")
		return nil
	}
	tw := tabwriter.NewWriter(sh.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tSUBTOTAL")
	for _, e := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.Product.ID, e.Product.Name, e.Quantity, e.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t%d\t%s\n", sh.client.CartUnits(), sh.client.CartTotal().StringFixed(2))
	return tw.Flush()
}

func cmdAdd(ctx context.Context, sh *shell, args []string) error {
	return sh.notice(sh.client.AddToCart(ctx, args[0]))
}

func cmdQuantity(ctx context.Context, sh *shell, args []string) error {
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	return sh.notice(sh.client.SetQuantity(ctx, args[0], qty))
}

func cmdRemove(ctx context.Context, sh *shell, args []string) error {
	return sh.notice(sh.client.RemoveFromCart(ctx, args[0]))
}

func cmdClear(ctx context.Context, sh *shell, _ []string) error {
	return sh.notice(sh.client.ClearCart(ctx))
}

func cmdWishlist(_ context.Context, sh *shell, _ []string) error {
	items := sh.client.WishlistItems()
	if len(items) == 0 {
		sh.printf("wishlist is empty\n")
		return nil
	}
	for _, e := range items {
		sh.printf("%s\t%s\n", e.Product.ID, e.Product.Name)
	}
	return nil
}

func cmdWish(ctx context.Context, sh *shell, args []string) error {
	return sh.notice(sh.client.AddToWishlist(ctx, args[0]))
}

func cmdUnwish(ctx context.Context, sh *shell, args []string) error {
	return sh.notice(sh.client.RemoveFromWishlist(ctx, args[0]))
}

func cmdMove(ctx context.Context, sh *shell, args []string) error {
	return sh.notice(sh.client.MoveToCart(ctx, args[0]))
}

func cmdCheckout(ctx context.Context, sh *shell, _ []string) error {
	receipt, err := sh.client.SubmitOrder(ctx)
	if receipt.IdempotencyKey != "" && (err == nil || errors.Is(err, storefront.ErrPersistence)) {
		sh.printf("%s\norder %s: %d items, total %s\n",
			receipt.Message, receipt.IdempotencyKey, receipt.TotalItems, receipt.ServerTotal.StringFixed(2))
	}
	return err
}

func cmdLowStock(ctx context.Context, sh *shell, _ []string) error {
	records, err := sh.client.API().LowStock(ctx)
	if err != nil {
		return err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].AvailableStock < records[j].AvailableStock })
	for _, r := range records {
		sh.printf("%s\t%s\t%d\n", r.ID, r.Name, r.AvailableStock)
	}
	return nil
}

func cmdExport(ctx context.Context, sh *shell, args []string) error {
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	n, err := sh.client.API().ExportCSV(ctx, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	sh.printf("wrote %d bytes to %s\n", n, args[0])
	return nil
}

func cmdWatch(ctx context.Context, sh *shell, _ []string) error {
	sh.printf("watching stock updates, interrupt to stop\n")
	err := sh.client.WatchStock(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (sh *shell) help() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sh.printf("  %s\n", commands[name].usage)
	}
	sh.printf("  help\n  quit\n")
}
