// Package console is a line-oriented point-of-sale terminal over a Station.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/ledger"
	"restaurant-floor/internal/summary"
)

const help = `commands:
  tables                  list tables and their open orders
  menu                    list the catalog
  select <table>          pick the table later commands act on
  status <status>         set the table status (available|occupied|reserved|maintenance)
  add <item>              add one unit of a menu item
  qty <item> <delta>      change a line's quantity
  remove <item>           drop a line
  order                   show the open order
  close <method>          settle the order (cash|card|pix)
  cancel                  void the order
  orders                  list every order
  summary [YYYY-MM-DD]    daily report, today by default
  help                    this text
  quit                    leave`

type Console struct {
	station *ledger.Station
	out     io.Writer
	loc     *time.Location
	lg      *logger.Logger
}

func New(st *ledger.Station, out io.Writer, loc *time.Location, lg *logger.Logger) *Console {
	if loc == nil {
		loc = time.Local
	}
	return &Console{station: st, out: out, loc: loc, lg: lg}
}

// Run reads commands from in until quit, EOF or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	c.prompt()
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if quit := c.Exec(sc.Text()); quit {
			return nil
		}
		c.prompt()
	}
	return sc.Err()
}

func (c *Console) prompt() {
	if t, err := c.station.Selected(); err == nil {
		fmt.Fprintf(c.out, "floor[table %d]> ", t.Number)
		return
	}
	fmt.Fprint(c.out, "floor> ")
}

// Exec runs one command line and reports whether the session should end.
func (c *Console) Exec(line string) bool {
	f := strings.Fields(line)
	if len(f) == 0 {
		return false
	}
	cmd, args := strings.ToLower(f[0]), f[1:]
	var err error
	switch cmd {
	case "quit", "exit":
		return true
	case "help", "?":
		fmt.Fprintln(c.out, help)
	case "tables":
		c.tables()
	case "menu":
		c.menu()
	case "select":
		err = c.selectTable(args)
	case "status":
		err = c.status(args)
	case "add":
		err = c.add(args)
	case "qty":
		err = c.qty(args)
	case "remove":
		err = c.remove(args)
	case "order":
		c.order()
	case "close":
		err = c.closeOrder(args)
	case "cancel":
		err = c.cancel()
	case "orders":
		c.orders()
	case "summary":
		err = c.summary(args)
	default:
		err = fmt.Errorf("unknown command %q, try help", cmd)
	}
	if err != nil {
		fmt.Fprintf(c.out, "error: %s\n", describe(err))
		c.lg.Debug("console_command_rejected", map[string]any{"command": cmd, "error": err.Error()})
	}
	return false
}

func describe(err error) string {
	switch {
	case errors.Is(err, ledger.ErrNoActiveTable):
		return "no table selected"
	case errors.Is(err, ledger.ErrNoOpenOrder):
		return "table has no open order"
	case errors.Is(err, ledger.ErrQuantityTooLarge):
		return fmt.Sprintf("quantity cannot exceed %d", ledger.MaxQuantity)
	case errors.Is(err, ledger.ErrInvalidQuantity):
		return "quantity cannot go below 1, use remove"
	default:
		return err.Error()
	}
}

func intArg(args []string, i int, name string) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing %s", name)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return n, nil
}

func (c *Console) name(id int) string { return c.station.Ledger().MenuItemName(id) }

func (c *Console) tables() {
	l := c.station.Ledger()
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tSEATS\tSTATUS\tORDER")
	for _, t := range l.Tables() {
		order := "-"
		if o, ok := l.CurrentOrder(t.ID); ok {
			order = fmt.Sprintf("#%d %s", o.ID, domain.Money(o.Total))
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", t.Number, t.Seats, t.Status, order)
	}
	_ = tw.Flush()
}

func (c *Console) menu() {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
	for _, m := range c.station.Ledger().Menu() {
		name := m.Name
		if !m.Available {
			name += " (unavailable)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", m.ID, name, m.Category, domain.Money(m.Price))
	}
	_ = tw.Flush()
}

func (c *Console) selectTable(args []string) error {
	id, err := intArg(args, 0, "table")
	if err != nil {
		return err
	}
	t, err := c.station.Select(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "table %d selected (%s)\n", t.Number, t.Status)
	return nil
}

func (c *Console) status(args []string) error {
	if len(args) == 0 {
		return errors.New("missing status")
	}
	st, err := domain.ParseTableStatus(args[0])
	if err != nil {
		return err
	}
	t, err := c.station.SetStatus(st)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "table %d is now %s\n", t.Number, t.Status)
	return nil
}

func (c *Console) add(args []string) error {
	id, err := intArg(args, 0, "item")
	if err != nil {
		return err
	}
	o, opened, err := c.station.AddItem(id)
	if err != nil {
		return err
	}
	if opened {
		fmt.Fprintf(c.out, "order #%d opened\n", o.ID)
	}
	fmt.Fprintf(c.out, "added %s, total %s\n", c.name(id), domain.Money(o.Total))
	return nil
}

func (c *Console) qty(args []string) error {
	id, err := intArg(args, 0, "item")
	if err != nil {
		return err
	}
	delta, err := intArg(args, 1, "delta")
	if err != nil {
		return err
	}
	o, err := c.station.UpdateQuantity(id, delta)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "total %s\n", domain.Money(o.Total))
	return nil
}

func (c *Console) remove(args []string) error {
	id, err := intArg(args, 0, "item")
	if err != nil {
		return err
	}
	o, removed, err := c.station.RemoveItem(id)
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintf(c.out, "order #%d removed\n", o.ID)
		return nil
	}
	fmt.Fprintf(c.out, "removed %s, total %s\n", c.name(id), domain.Money(o.Total))
	return nil
}

func (c *Console) order() {
	o, ok := c.station.CurrentOrder()
	if !ok {
		fmt.Fprintln(c.out, "no open order")
		return
	}
	c.printOrder(o)
}

func (c *Console) printOrder(o domain.Order) {
	fmt.Fprintf(c.out, "order #%d table %d %s\n", o.ID, o.TableID, o.Status)
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, l := range o.Lines {
		fmt.Fprintf(tw, "  %d x\t%s\t%s\t%s\n", l.Quantity, c.name(l.MenuItemID), domain.Money(l.Price), domain.Money(l.Subtotal()))
	}
	_ = tw.Flush()
	fmt.Fprintf(c.out, "  total %s\n", domain.Money(o.Total))
}

func (c *Console) closeOrder(args []string) error {
	if len(args) == 0 {
		return errors.New("missing payment method")
	}
	m, err := domain.ParsePaymentMethod(strings.ToLower(args[0]))
	if err != nil {
		return err
	}
	o, err := c.station.CloseOrder(m)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "order #%d closed, %s paid by %s\n", o.ID, domain.Money(o.Total), o.PaymentMethod)
	c.lg.Info("order_closed", map[string]any{"order_id": o.ID, "table_id": o.TableID, "total": domain.Money(o.Total)})
	return nil
}

func (c *Console) cancel() error {
	o, err := c.station.CancelOrder()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "order #%d canceled\n", o.ID)
	c.lg.Info("order_canceled", map[string]any{"order_id": o.ID, "table_id": o.TableID})
	return nil
}

func (c *Console) orders() {
	all := c.station.Ledger().Orders()
	if len(all) == 0 {
		fmt.Fprintln(c.out, "no orders")
		return
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tTABLE\tSTATUS\tTOTAL\tPAYMENT")
	for _, o := range all {
		pay := string(o.PaymentMethod)
		if pay == "" {
			pay = "-"
		}
		fmt.Fprintf(tw, "#%d\t%d\t%s\t%s\t%s\n", o.ID, o.TableID, o.Status, domain.Money(o.Total), pay)
	}
	_ = tw.Flush()
}

func (c *Console) summary(args []string) error {
	date := c.station.Ledger().Now().In(c.loc)
	if len(args) > 0 {
		d, err := time.ParseInLocation(summary.DateLayout, args[0], c.loc)
		if err != nil {
			return fmt.Errorf("date %q: want YYYY-MM-DD", args[0])
		}
		date = d
	}
	s, ok := summary.Summarize(c.station.Ledger().Orders(), date)
	if !ok {
		fmt.Fprintf(c.out, "no sales on %s\n", date.Format(summary.DateLayout))
		return nil
	}
	r := summary.NewReport(s, c.name)
	fmt.Fprintf(c.out, "sales %s: %s over %d orders, average %s\n", r.Date, r.TotalAmount, r.OrderCount, r.AverageTicket)
	for _, m := range domain.PaymentMethods {
		fmt.Fprintf(c.out, "  %-5s %10s  %5s%%\n", m, r.PaymentMethods[m], r.PaymentShares[m])
	}
	if peak, ok := s.PeakHour(); ok {
		fmt.Fprintf(c.out, "  peak hour %02d:00 (%d orders)\n", peak.Hour, peak.Orders)
	}
	for i, it := range r.TopSellingItems {
		if i == 5 {
			break
		}
		fmt.Fprintf(c.out, "  %d. %s x%d %s\n", i+1, it.Name, it.Quantity, it.Revenue)
	}
	if r.CanceledOrders > 0 {
		fmt.Fprintf(c.out, "  canceled %d\n", r.CanceledOrders)
	}
	return nil
}
