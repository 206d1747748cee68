package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	apperrors "expensely/internal/errors"
	"expensely/internal/money"
	"expensely/internal/notify"
	"expensely/internal/profile"
	"expensely/internal/session"
	"expensely/internal/theme"
	"expensely/internal/transactions"
)

const usage = `usage: expensely <command> [args]

account:
  register <name> <email> <password>
  login <email> <password>
  logout
  status

transactions (signed in):
  list
  add <amount> <category> <date> [notes]
  update <id> [amount=..] [category=..] [date=..] [notes=..] [receipt=<file>]
  delete <id>
  seed
  export <csv|json|yaml> [file]
  summary

appearance:
  theme [light|dark|system|toggle]`

var errNotSignedIn = apperrors.WithMessage(apperrors.ErrUnauthorized, "Not signed in; run 'expensely login <email> <password>'")

type app struct {
	profile *profile.Profile
	session *session.Store
	out     io.Writer
}

func newApp(p *profile.Profile, s *session.Store, out io.Writer) *app {
	return &app{profile: p, session: s, out: out}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, usage)
		return nil
	}

	command, rest := args[0], args[1:]
	var err error
	switch command {
	case "register":
		err = a.register(ctx, rest)
	case "login":
		err = a.login(ctx, rest)
	case "logout":
		err = a.logout(ctx)
	case "status":
		err = a.status(ctx)
	case "theme":
		err = a.theme(ctx, rest)
	case "list", "add", "update", "delete", "seed", "export", "summary":
		if !a.session.IsAuthenticated(ctx) {
			return errNotSignedIn
		}
		err = a.data(ctx, command, rest)
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, usage)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", command, usage)
	}

	a.flushNotifications()
	return err
}

func (a *app) data(ctx context.Context, command string, args []string) error {
	switch command {
	case "list":
		return a.list(ctx)
	case "add":
		return a.add(ctx, args)
	case "update":
		return a.update(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	case "seed":
		return a.seed(ctx)
	case "export":
		return a.export(ctx, args)
	default:
		return a.summary(ctx)
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usageError("register <name> <email> <password>")
	}
	info, err := a.session.Register(ctx, session.Registration{Name: args[0], Email: args[1], Password: args[2]})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s <%s>. Run 'expensely login' to sign in.\n", info.FullName, info.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("login <email> <password>")
	}
	info, err := a.session.Login(ctx, session.Credentials{Email: args[0], Password: args[1]})
	if err != nil {
		return err
	}
	a.profile.Notifications.Show("Signed in as " + info.Email)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.profile.Notifications.Show("Signed out")
	return nil
}

func (a *app) status(ctx context.Context) error {
	if !a.session.IsAuthenticated(ctx) {
		fmt.Fprintln(a.out, "signed out")
		return nil
	}
	info, err := a.session.Me(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "signed in (server says: %s)\n", err)
		return nil
	}
	fmt.Fprintf(a.out, "signed in as %s <%s>\n", info.FullName, info.Email)
	return nil
}

func (a *app) theme(ctx context.Context, args []string) error {
	themes := a.profile.Theme
	switch {
	case len(args) == 0:
	case args[0] == "toggle":
		if _, err := themes.ToggleTheme(ctx); err != nil {
			return err
		}
	default:
		pref, err := theme.ParsePreference(args[0])
		if err != nil {
			return err
		}
		if err := themes.SetTheme(ctx, pref); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.out, "theme: %s (effective %s)\n", themes.Preference(), themes.EffectiveTheme())
	return nil
}

func (a *app) list(ctx context.Context) error {
	records, err := a.profile.Transactions.FetchAll(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "no transactions")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tAMOUNT\tNOTES\tRECEIPT")
	for _, r := range records {
		receipt := ""
		if r.ReceiptURL != "" {
			receipt = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Date, r.Category, r.Amount.StringFixed(2), r.Notes, receipt)
	}
	return w.Flush()
}

func (a *app) add(ctx context.Context, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return usageError("add <amount> <category> <date> [notes]")
	}
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	fields := transactions.Fields{Amount: amount, Category: args[1], Date: transactions.Date(args[2])}
	if len(args) == 4 {
		fields.Notes = args[3]
	}
	rec, err := a.profile.Transactions.Create(ctx, fields)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, rec.ID)
	a.profile.Notifications.Show("Transaction added")
	return nil
}

func (a *app) update(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("update <id> field=value...")
	}
	var patch transactions.Patch
	for _, arg := range args[1:] {
		field, value, ok := strings.Cut(arg, "=")
		if !ok {
			return usageError("update <id> field=value...")
		}
		switch field {
		case "amount":
			amount, err := parseAmount(value)
			if err != nil {
				return err
			}
			patch.Amount = &amount
		case "category":
			patch.Category = &value
		case "date":
			d := transactions.Date(value)
			patch.Date = &d
		case "notes":
			patch.Notes = &value
		case "receipt":
			ref, err := a.readReceipt(value)
			if err != nil {
				return err
			}
			patch.ReceiptURL = &ref
		default:
			return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown field %q", field))
		}
	}
	if _, err := a.profile.Transactions.Update(ctx, args[0], patch); err != nil {
		return err
	}
	a.profile.Notifications.Show("Transaction updated")
	return nil
}

func (a *app) readReceipt(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrReceiptUnreadable, err)
	}
	defer f.Close()
	return a.profile.Transactions.UploadReceipt(f)
}

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("delete <id>")
	}
	if _, err := a.profile.Transactions.Delete(ctx, args[0]); err != nil {
		return err
	}
	a.profile.Notifications.Show("Transaction deleted")
	return nil
}

func (a *app) seed(ctx context.Context) error {
	seeded, err := a.profile.Transactions.SeedIfEmpty(ctx)
	if err != nil {
		return err
	}
	if seeded {
		a.profile.Notifications.Show("Demo transactions added")
	} else {
		a.profile.Notifications.Show("Transactions already present; nothing seeded", notify.WithSeverity(notify.Info))
	}
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usageError("export <csv|json|yaml> [file]")
	}
	records, err := a.profile.Transactions.FetchAll(ctx)
	if err != nil {
		return err
	}
	data, _, err := transactions.Export(records, args[0])
	if err != nil {
		return err
	}
	if len(args) == 1 {
		_, err = a.out.Write(data)
		return err
	}
	if err := os.WriteFile(args[1], data, 0o600); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	a.profile.Notifications.Show(fmt.Sprintf("Exported %d transactions to %s", len(records), args[1]))
	return nil
}

func (a *app) summary(ctx context.Context) error {
	records, err := a.profile.Transactions.FetchAll(ctx)
	if err != nil {
		return err
	}
	prefs, err := a.profile.Preferences.Load(ctx)
	if err != nil {
		return err
	}
	sum := transactions.Summarize(records)

	fmt.Fprintf(a.out, "Total: %s across %d transactions\n", money.Format(sum.Total, prefs.Currency), sum.Count)
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	if len(sum.Categories) > 0 {
		fmt.Fprintln(w, "\nCATEGORY\tTOTAL\tCOUNT")
		for _, c := range sum.Categories {
			fmt.Fprintf(w, "%s\t%s\t%d\n", c.Category, money.Format(c.Total, prefs.Currency), c.Count)
		}
	}
	if len(sum.Months) > 0 {
		fmt.Fprintln(w, "\nMONTH\tTOTAL\tCOUNT")
		for _, m := range sum.Months {
			fmt.Fprintf(w, "%s\t%s\t%d\n", m.Month, money.Format(m.Total, prefs.Currency), m.Count)
		}
	}
	return w.Flush()
}

// flushNotifications prints and dismisses every toast raised by the command.
func (a *app) flushNotifications() {
	for _, n := range a.profile.Notifications.Active() {
		fmt.Fprintf(a.out, "[%s] %s\n", n.Severity, n.Message)
		a.profile.Notifications.Dismiss(n.ID)
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("amount %q is not a number", s))
	}
	return d, nil
}

func usageError(form string) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, "usage: expensely "+form)
}
