package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/shastra-reservations/internal/client"
	"github.com/iliyamo/shastra-reservations/internal/flow"
	"github.com/iliyamo/shastra-reservations/internal/notify"
)

// clearAnswer empties an optional field that would otherwise keep its
// previous value.
const clearAnswer = "-"

// prompter reads answers line by line.  io.EOF from the input ends the
// session.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *prompter) ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	v := strings.TrimSpace(p.in.Text())
	if v == "" {
		v = def
	}
	return v, nil
}

// runBook drives one flow from AUTH (or FORM) to SUCCESS.  Failed submits,
// including timeouts, are printed and asked again; the flow keeps its
// request token so a retried booking is not duplicated.  Only prompt I/O
// errors and a cancelled context end the session.
func runBook(cmd *cobra.Command, api flow.API) error {
	p := &prompter{in: bufio.NewScanner(cmd.InOrStdin()), out: cmd.OutOrStdout()}
	f := flow.Open(api, nil)
	defer f.Close()

	ctx := cmd.Context()
	for {
		switch f.View() {
		case flow.ViewAuth:
			if err := authStep(p, f); err != nil {
				return err
			}
			if err := f.SubmitAuth(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				report(p.out, err)
				continue
			}
			fmt.Fprintf(p.out, "Welcome, %s!\n", f.Account().Name)

		case flow.ViewForm:
			if err := formStep(p, f); err != nil {
				return err
			}
			if err := f.SubmitBooking(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				report(p.out, err)
				continue
			}

		case flow.ViewSuccess:
			c := f.Confirmation()
			fmt.Fprintf(p.out, "Reservation confirmed! %s for %s.\n", c.ID, notify.GuestsLabel(c.Guests))
			fmt.Fprintln(p.out, f.SuccessMessage())
			return nil

		default:
			return nil
		}
	}
}

func authStep(p *prompter, f *flow.Flow) error {
	mode, err := p.ask("Do you have an account? (y/n)", "y")
	if err != nil {
		return err
	}
	if strings.HasPrefix(strings.ToLower(mode), "n") {
		f.SetAuthMode(flow.ModeSignup)
	} else {
		f.SetAuthMode(flow.ModeLogin)
	}

	var fields flow.AuthFields
	if f.Mode() == flow.ModeSignup {
		if fields.Name, err = p.ask("Full name", ""); err != nil {
			return err
		}
	}
	if fields.Email, err = p.ask("Email", ""); err != nil {
		return err
	}
	if fields.Phone, err = p.ask("Phone", ""); err != nil {
		return err
	}
	f.SetAuthFields(fields)
	return nil
}

func formStep(p *prompter, f *flow.Flow) error {
	prev := f.Form()
	var (
		form flow.FormFields
		err  error
	)
	if form.Date, err = p.ask("Date (YYYY-MM-DD)", prev.Date); err != nil {
		return err
	}
	if form.Time, err = p.ask("Time (HH:MM)", prev.Time); err != nil {
		return err
	}
	if form.Guests, err = p.ask("Guests (1-10, 10+)", prev.Guests); err != nil {
		return err
	}
	if form.SpecialRequest, err = p.ask("Special request (- for none)", prev.SpecialRequest); err != nil {
		return err
	}
	if form.SpecialRequest == clearAnswer {
		form.SpecialRequest = ""
	}
	f.SetForm(form)
	return nil
}

// report prints a failed submit so the guest can try again.  API errors
// show the server's message and field details.
func report(out io.Writer, err error) {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	fmt.Fprintln(out, "Error:", apiErr.Message)
	for _, d := range apiErr.Details {
		fmt.Fprintf(out, "  - %s\n", d.Message)
	}
}
