package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/valuationdesk/internal/client/dashboard"
	"github.com/dmitrijs2005/valuationdesk/internal/client/models"
	"github.com/dmitrijs2005/valuationdesk/internal/client/repositories/metadata"
)

var errUsage = errors.New("usage")

// filterKeys maps filter command keys to record fields.
var filterKeys = map[string]string{
	"city":     "city",
	"bank":     "bankName",
	"engineer": "engineerName",
}

// Dashboard reloads the records and prints the current page. Subcommands
// change the view first:
//
//	dashboard filter status=pending city=Pune | filter clear
//	dashboard sort <field>
//	dashboard page <n>
//	dashboard values city|bank|engineer
func (a *App) Dashboard(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "filter":
			if err := a.applyFilter(args[1:]); err != nil {
				return err
			}
		case "sort":
			if len(args) < 2 {
				fmt.Fprintln(a.out, "Usage: dashboard sort <field>")
				return errUsage
			}
			a.mu.Lock()
			a.view.Sort = a.view.Sort.Toggle(args[1])
			a.view.Page = 1
			a.mu.Unlock()
		case "page":
			n, err := strconv.Atoi(argAt(args, 1))
			if err != nil {
				fmt.Fprintln(a.out, "Usage: dashboard page <n>")
				return errUsage
			}
			a.mu.Lock()
			a.view.Page = n
			a.mu.Unlock()
		case "values":
			return a.values(ctx, argAt(args, 1))
		case "refresh":
		default:
			fmt.Fprintln(a.out, "Unknown dashboard command:", args[0])
			return errUsage
		}
		a.saveView(ctx)
		if args[0] != "refresh" {
			return a.printPage(a.recordsOrLoad(ctx))
		}
	}

	return a.printPage(a.reload(ctx))
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func (a *App) applyFilter(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: dashboard filter key=value ... | clear")
		return errUsage
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if args[0] == "clear" {
		a.view.Filter = dashboard.Filter{}
		a.view.Page = 1
		return nil
	}
	f := a.view.Filter
	for _, kv := range args {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			fmt.Fprintln(a.out, "Bad filter:", kv)
			return errUsage
		}
		switch k {
		case "status":
			st := models.ParseStatus(v)
			if st == "" && v != "" {
				fmt.Fprintln(a.out, "Unknown status:", v)
				return errUsage
			}
			f.Status = st
		case "city":
			f.City = v
		case "bank":
			f.Bank = v
		case "engineer":
			f.Engineer = v
		default:
			fmt.Fprintln(a.out, "Unknown filter:", k)
			return errUsage
		}
	}
	a.view.Filter = f
	a.view.Page = 1
	return nil
}

func (a *App) saveView(ctx context.Context) {
	a.mu.Lock()
	v := a.view
	a.mu.Unlock()
	if err := metadata.SetJSON(ctx, a.meta, metadata.KeyView, v); err != nil {
		a.log.Warn(ctx, "view not saved", "error", err)
	}
}

// reload fetches all collections unless offline, in which case the last
// loaded records are kept.
func (a *App) reload(ctx context.Context) []models.Record {
	if !a.online() {
		fmt.Fprintln(a.out, "Offline: showing last loaded records")
		return a.snapshot()
	}
	recs := a.dash.Load(ctx)
	a.mu.Lock()
	a.records = recs
	a.mu.Unlock()
	return recs
}

func (a *App) recordsOrLoad(ctx context.Context) []models.Record {
	a.mu.Lock()
	loaded := a.records != nil
	a.mu.Unlock()
	if loaded {
		return a.snapshot()
	}
	return a.reload(ctx)
}

func (a *App) snapshot() []models.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.records
}

func (a *App) currentPage(recs []models.Record) dashboard.Page {
	a.mu.Lock()
	v := a.view
	a.mu.Unlock()
	p := v.Apply(recs, a.now())
	a.mu.Lock()
	a.view.Page = p.Page
	a.mu.Unlock()
	return p
}

func (a *App) printPage(recs []models.Record) error {
	p := a.currentPage(recs)
	now := a.now()

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "UNIQUE ID\tCLIENT\tBANK\tCITY\tENGINEER\tSTATUS\tFORM\tELAPSED")
	for _, r := range p.Items {
		elapsed := "-"
		if e, ok := dashboard.ElapsedFor(r, now); ok {
			elapsed = e.String()
		}
		status := string(r.Status())
		if status == "" {
			status = r.Str("status")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.UniqueID(), r.Str("clientName"), r.Str("bankName"), r.Str("city"),
			r.Str("engineerName"), status, r.FormType(), elapsed)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Page %d of %d (%d records)\n", p.Page, max(p.TotalPages, 1), p.Total)
	return nil
}

func (a *App) values(ctx context.Context, key string) error {
	field, ok := filterKeys[key]
	if !ok {
		fmt.Fprintln(a.out, "Usage: dashboard values city|bank|engineer")
		return errUsage
	}
	for _, v := range dashboard.UniqueValues(a.recordsOrLoad(ctx), field) {
		fmt.Fprintln(a.out, v)
	}
	return nil
}

// Stats prints the status counts of all loaded records.
func (a *App) Stats(ctx context.Context) error {
	c := dashboard.Count(a.recordsOrLoad(ctx))
	fmt.Fprintf(a.out, "Total: %d\nPending: %d\nOn progress: %d\nApproved: %d\nRejected: %d\nRework: %d\nCompletion rate: %d%%\n",
		c.Total, c.Pending, c.OnProgress, c.Approved, c.Rejected, c.Rework, c.CompletionRate)
	return nil
}

// Watch prints the live elapsed time of the open records on the current
// page once per second, n times (default 5).
func (a *App) Watch(ctx context.Context, args []string) error {
	n := 5
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			fmt.Fprintln(a.out, "Usage: watch [count]")
			return errUsage
		}
		n = v
	}

	items := a.currentPage(a.recordsOrLoad(ctx)).Items
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	i := 0
	for d := range dashboard.Tick(ctx, items, time.Second, a.now) {
		for _, r := range items {
			if e, ok := d[r.Str("_id")]; ok {
				fmt.Fprintf(a.out, "%s\t%s\n", r.UniqueID(), e)
			} else if e, ok := d[r.UniqueID()]; ok {
				fmt.Fprintf(a.out, "%s\t%s\n", r.UniqueID(), e)
			}
		}
		if i++; i >= n {
			cancel()
			break
		}
		fmt.Fprintln(a.out, "--")
	}
	return nil
}

// Copy prints the contact sheet of the given records, or of the current
// page when no id is given.
func (a *App) Copy(ctx context.Context, ids []string) error {
	recs := a.recordsOrLoad(ctx)
	var selected []models.Record
	if len(ids) == 0 {
		selected = a.currentPage(recs).Items
	} else {
		for _, id := range ids {
			r, ok := findRecord(recs, id)
			if !ok {
				fmt.Fprintln(a.out, "No such record:", id)
				return errUsage
			}
			selected = append(selected, r)
		}
	}
	if len(selected) == 0 {
		fmt.Fprintln(a.out, "Nothing to copy")
		return nil
	}
	fmt.Fprintln(a.out, dashboard.ContactSheet(selected))
	return nil
}

func findRecord(recs []models.Record, uniqueID string) (models.Record, bool) {
	for _, r := range recs {
		if r.UniqueID() == uniqueID {
			return r, true
		}
	}
	return nil, false
}
