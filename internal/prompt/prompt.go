// Package prompt asks for missing query parameters on an interactive
// terminal, re-asking until the answer is valid.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"nypd311/internal/query"
)

// ErrAborted is returned when input ends before a valid answer is given.
var ErrAborted = errors.New("prompt: input closed")

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Prompter reads answers from in and writes questions and complaints to out.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a Prompter over in and out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Fill prompts for every zero or invalid field of r except PageLimit, in the
// order borough, start year, end year. A supplied value that is out of range,
// or an end year before the start year, is reported and asked for again.
func (p *Prompter) Fill(r *query.Range) error {
	if r.Borough != "" && !r.Borough.Valid() {
		fmt.Fprintf(p.out, "Invalid borough %q\n", string(r.Borough))
		r.Borough = ""
	}
	if r.Borough == "" {
		b, err := p.Borough()
		if err != nil {
			return err
		}
		r.Borough = b
	}
	if r.StartYear != 0 {
		if err := query.ValidateYear(r.StartYear); err != nil {
			fmt.Fprintf(p.out, "Invalid start year: %v\n", err)
			r.StartYear = 0
		}
	}
	if r.StartYear == 0 {
		y, err := p.Year("Start year", query.MinYear)
		if err != nil {
			return err
		}
		r.StartYear = y
	}
	if r.EndYear != 0 {
		if err := query.ValidateYear(r.EndYear); err != nil {
			fmt.Fprintf(p.out, "Invalid end year: %v\n", err)
			r.EndYear = 0
		} else if r.EndYear < r.StartYear {
			fmt.Fprintf(p.out, "Invalid end year: %d is before %d\n", r.EndYear, r.StartYear)
			r.EndYear = 0
		}
	}
	if r.EndYear == 0 {
		y, err := p.Year("End year", r.StartYear)
		if err != nil {
			return err
		}
		r.EndYear = y
	}
	return nil
}

// Borough asks until the answer names a borough.
func (p *Prompter) Borough() (query.Borough, error) {
	var out query.Borough
	err := p.ask(fmt.Sprintf("Borough (%s): ", choices()), func(s string) error {
		b, err := query.ParseBorough(s)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// Year asks until the answer is a year in [from, query.MaxYear]. from is
// clamped to [query.MinYear, query.MaxYear].
func (p *Prompter) Year(label string, from int) (int, error) {
	from = min(max(from, query.MinYear), query.MaxYear)
	var out int
	err := p.ask(fmt.Sprintf("%s [%d-%d]: ", label, from, query.MaxYear), func(s string) error {
		y, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%q is not a year", s)
		}
		if err := query.ValidateYear(y); err != nil {
			return err
		}
		if y < from {
			return fmt.Errorf("%d is before %d", y, from)
		}
		out = y
		return nil
	})
	return out, err
}

func (p *Prompter) ask(question string, accept func(string) error) error {
	for {
		fmt.Fprint(p.out, question)
		line, err := p.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer != "" {
			aerr := accept(answer)
			if aerr == nil {
				return nil
			}
			fmt.Fprintf(p.out, "Invalid input: %v\n", aerr)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ErrAborted
			}
			return fmt.Errorf("prompt: read: %w", err)
		}
	}
}

func choices() string {
	names := make([]string, len(query.Boroughs))
	for i, b := range query.Boroughs {
		names[i] = strings.ToLower(b.FilterValue())
	}
	return strings.Join(names, ", ")
}
