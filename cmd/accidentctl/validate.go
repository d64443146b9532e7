package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/accident-dashboard-service/internal/dataset"
	"github.com/couchcryptid/accident-dashboard-service/internal/domain"
	"github.com/spf13/cobra"
)

// errValidation is returned when at least one check fails.
var errValidation = errors.New("validation failed")

// maxReported caps the errors printed per check.
const maxReported = 10

// check tracks pass/fail for one validation check.
type check struct {
	name   string
	errors []string
}

func (c *check) errorf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func (c *check) passed() bool { return len(c.errors) == 0 }

func newValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a dataset for rows and values the dashboard cannot use.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, schema, report, err := c.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			checks := []*check{
				checkDates(report),
				checkNumeric(table, schema),
				checkCoordinates(table, schema),
			}
			return c.report(table, schema, checks)
		},
	}
}

func (c *cli) report(table *domain.Table, schema domain.Schema, checks []*check) error {
	w := c.out
	fmt.Fprintf(w, "Rows: %d, columns: %d\n", table.Len(), len(table.Columns()))
	for _, role := range domain.Roles {
		col, ok := schema.Column(role)
		if !ok {
			col = "(unavailable)"
		}
		fmt.Fprintf(w, "  %-16s %s\n", role, col)
	}
	fmt.Fprintln(w)

	allPassed := true
	for _, ch := range checks {
		status := c.color("PASS", 32)
		if !ch.passed() {
			status = c.color(fmt.Sprintf("FAIL (%d errors)", len(ch.errors)), 31)
			allPassed = false
		}
		fmt.Fprintf(w, "  %-36s %s\n", ch.name, status)
	}

	for _, ch := range checks {
		if ch.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", ch.name)
		printErrors(w, ch.errors)
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll checks passed.")
		return nil
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return errValidation
}

func printErrors(w io.Writer, errs []string) {
	for i, e := range errs {
		if i == maxReported {
			fmt.Fprintf(w, "  ... %d more\n", len(errs)-maxReported)
			return
		}
		fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
	}
}

// color wraps s in an ANSI color when writing to a terminal.
func (c *cli) color(s string, code int) string {
	if !c.tty {
		return s
	}
	return fmt.Sprintf("\033[%dm%s\033[0m", code, s)
}

func checkDates(report dataset.LoadReport) *check {
	ch := &check{name: "Date column parses"}
	if report.DroppedRows > 0 {
		ch.errorf("%d rows dropped with an unparseable date", report.DroppedRows)
	}
	if report.Rows == 0 {
		ch.errorf("no rows with a valid date")
	}
	return ch
}

// checkNumeric reports non-numeric cells in the roles that are aggregated as
// numbers, and negative casualty counts.
func checkNumeric(table *domain.Table, schema domain.Schema) *check {
	ch := &check{name: "Numeric role columns"}
	for _, role := range []domain.Role{domain.RoleCasualties, domain.RoleSpeedLimit} {
		col, ok := schema.Column(role)
		if !ok {
			continue
		}
		for i := range table.Len() {
			v := table.Record(i).Get(col)
			if v.IsNull() {
				continue
			}
			f, ok := v.Float()
			switch {
			case !ok:
				ch.errorf("record %d: %s %q is not a number", i+1, col, v.Key())
			case f < 0:
				ch.errorf("record %d: %s is negative (%v)", i+1, col, f)
			}
		}
	}
	return ch
}

func checkCoordinates(table *domain.Table, schema domain.Schema) *check {
	ch := &check{name: "Coordinates in range"}
	latCol, latOK := schema.Column(domain.RoleLatitude)
	lonCol, lonOK := schema.Column(domain.RoleLongitude)
	if !latOK || !lonOK {
		return ch
	}
	for i := range table.Len() {
		rec := table.Record(i)
		if lat, ok := rec.Get(latCol).Float(); ok && (lat < -90 || lat > 90) {
			ch.errorf("record %d: %s %v out of range", i+1, latCol, lat)
		}
		if lon, ok := rec.Get(lonCol).Float(); ok && (lon < -180 || lon > 180) {
			ch.errorf("record %d: %s %v out of range", i+1, lonCol, lon)
		}
	}
	return ch
}
