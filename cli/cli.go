// Package cli implements the interactive terminal surface of the booking
// flow. It renders what the core returns and never interprets it.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mediplanner/medicover"
)

const helpText = `Available commands:
  fields                         show form fields and current selections
  show <field>                   show the options of a field
  select <field> <index>         select an option by index
  select_text <field> <text>     select the single option containing <text>
  search                         search for free slots
  load_more                      load the next page of results
  book <index>                   book the result at <index>
  watch                          poll for slots matching a preference
  help                           show this help
  quit                           exit`

// Form is the part of the search form the CLI drives.
type Form interface {
	FieldNames() []medicover.FieldName
	Field(name medicover.FieldName) (*medicover.Field, error)
	Select(ctx context.Context, name medicover.FieldName, index int) error
	SelectByText(ctx context.Context, name medicover.FieldName, substring string) error
	CanSearch() bool
	Search(ctx context.Context) error
	LoadMore(ctx context.Context) error
	Book(ctx context.Context, index int) (bool, error)
	Results() []medicover.AvailableVisit
	Warnings() []string
}

// WatchFunc runs the watch loop with the given preference until its context
// is cancelled.
type WatchFunc func(ctx context.Context, pref medicover.VisitPreference) error

// CLI is the interactive prompt loop.
type CLI struct {
	form    Form
	watchFn WatchFunc
	in      *bufio.Scanner
	out     io.Writer
}

// New creates a CLI reading commands from in and writing to out.
func New(form Form, watchFn WatchFunc, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		form:    form,
		watchFn: watchFn,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// Run processes commands until quit or end of input.
func (c *CLI) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, helpText)

	for {
		fmt.Fprint(c.out, "\n> ")
		line, ok := c.readLine()
		if !ok {
			return nil
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "fields":
			c.handleFields()
		case "show":
			c.handleShow(parts[1:])
		case "select":
			c.handleSelect(ctx, parts[1:])
		case "select_text":
			c.handleSelectText(ctx, parts[1:])
		case "search":
			c.handleSearch(ctx)
		case "load_more":
			c.handleLoadMore(ctx)
		case "book":
			c.handleBook(ctx, parts[1:])
		case "watch":
			c.handleWatch(ctx)
		case "help":
			fmt.Fprintln(c.out, helpText)
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintln(c.out, "Unknown command, type 'help' for the command list")
		}
	}
}

func (c *CLI) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *CLI) handleFields() {
	for _, name := range c.form.FieldNames() {
		field, err := c.form.Field(name)
		if err != nil {
			continue
		}
		selectedText := ""
		if selected := field.Selected(); selected != nil {
			selectedText = selected.Text
			if field.Stale() {
				selectedText += " (no longer available with the current selection)"
			}
		}
		fmt.Fprintf(c.out, "%s: %s\n", name, selectedText)
	}
	if c.form.CanSearch() {
		fmt.Fprintln(c.out, "\nThe form is ready to search.")
	}
}

func (c *CLI) handleShow(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: show <field>")
		return
	}
	field, err := c.form.Field(medicover.FieldName(args[0]))
	if err != nil {
		fmt.Fprintln(c.out, err)
		return
	}
	if len(field.Options()) == 0 {
		fmt.Fprintf(c.out, "%s list is empty\n", args[0])
		return
	}
	fmt.Fprintln(c.out, field.FormatOptions())
}

func (c *CLI) handleSelect(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.out, "Usage: select <field> <index>")
		return
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintln(c.out, "Option index must be a number")
		return
	}
	if err := c.form.Select(ctx, medicover.FieldName(args[0]), index); err != nil {
		fmt.Fprintln(c.out, err)
		return
	}
	c.printWarnings()
}

func (c *CLI) handleSelectText(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: select_text <field> <text>")
		return
	}
	substring := strings.Join(args[1:], " ")
	if err := c.form.SelectByText(ctx, medicover.FieldName(args[0]), substring); err != nil {
		fmt.Fprintln(c.out, err)
		return
	}
	c.printWarnings()
}

func (c *CLI) handleSearch(ctx context.Context) {
	if !c.form.CanSearch() {
		fmt.Fprintln(c.out, "The form needs more selections before searching")
		return
	}
	if err := c.form.Search(ctx); err != nil {
		fmt.Fprintln(c.out, err)
		return
	}
	c.printResults()
}

func (c *CLI) handleLoadMore(ctx context.Context) {
	if len(c.form.Results()) == 0 {
		fmt.Fprintln(c.out, "Nothing to load, search first")
		return
	}
	if err := c.form.LoadMore(ctx); err != nil {
		fmt.Fprintln(c.out, err)
		return
	}
	c.printResults()
}

func (c *CLI) handleBook(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: book <index>")
		return
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(c.out, "Result index must be a number")
		return
	}

	results := c.form.Results()
	if index < 0 || index >= len(results) {
		fmt.Fprintln(c.out, "No result with that index")
		return
	}

	fmt.Fprintf(c.out, "Book %s? [y/N] ", results[index])
	answer, ok := c.readLine()
	if !ok || !strings.EqualFold(answer, "y") {
		fmt.Fprintln(c.out, "Cancelled")
		return
	}

	booked, err := c.form.Book(ctx, index)
	if err != nil {
		fmt.Fprintln(c.out, err)
		return
	}
	if booked {
		fmt.Fprintln(c.out, "Visit booked")
	} else {
		fmt.Fprintln(c.out, "Booking was not accepted")
	}
}

func (c *CLI) handleWatch(ctx context.Context) {
	if c.watchFn == nil {
		fmt.Fprintln(c.out, "Watch mode is not configured")
		return
	}
	if !c.form.CanSearch() {
		fmt.Fprintln(c.out, "The form needs more selections before watching")
		return
	}

	pref, err := c.promptPreference()
	if err != nil {
		fmt.Fprintln(c.out, err)
		return
	}

	fmt.Fprintln(c.out, "Watching for matching visits, press Ctrl+C to stop")
	if err := c.watchFn(ctx, pref); err != nil {
		fmt.Fprintln(c.out, err)
	}
}

// promptPreference asks for the optional visit constraints; an empty answer
// skips a constraint.
func (c *CLI) promptPreference() (medicover.VisitPreference, error) {
	var pref medicover.VisitPreference
	fmt.Fprintln(c.out, "Please provide visit preference details. Press ENTER to skip a field")

	answer := c.prompt("Not before hour? FORMAT: HH:MM e.g. 12:00")
	if answer != "" {
		from, err := medicover.ParseDayTime(answer)
		if err != nil {
			return pref, err
		}
		pref.TimeFrom = &from
	}

	answer = c.prompt("Not after hour? FORMAT: HH:MM e.g. 12:00")
	if answer != "" {
		to, err := medicover.ParseDayTime(answer)
		if err != nil {
			return pref, err
		}
		pref.TimeTo = &to
	}

	answer = c.prompt("Not before date? FORMAT: DD.MM.YYYY e.g. 01.01.2016")
	if answer != "" {
		from, err := medicover.ParsePreferenceDate(answer)
		if err != nil {
			return pref, err
		}
		pref.DateFrom = &from
	}

	answer = c.prompt("Not after date? FORMAT: DD.MM.YYYY e.g. 01.01.2016")
	if answer != "" {
		to, err := medicover.ParsePreferenceDate(answer)
		if err != nil {
			return pref, err
		}
		pref.DateTo = &to
	}

	answer = c.prompt("What day of the week? FORMAT: full weekday name e.g. wednesday")
	if answer != "" {
		weekday, err := medicover.ParseWeekday(answer)
		if err != nil {
			return pref, err
		}
		pref.Weekday = &weekday
	}

	return pref, nil
}

func (c *CLI) prompt(text string) string {
	fmt.Fprintf(c.out, "%s: ", text)
	answer, _ := c.readLine()
	return answer
}

func (c *CLI) printWarnings() {
	for _, warning := range c.form.Warnings() {
		fmt.Fprintf(c.out, "Warning: %s\n", warning)
	}
}

func (c *CLI) printResults() {
	results := c.form.Results()
	if len(results) == 0 {
		fmt.Fprintln(c.out, "No free slots found")
		return
	}
	for i, visit := range results {
		fmt.Fprintf(c.out, "%d: %s\n", i, visit)
	}
}
