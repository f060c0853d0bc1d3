package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fridaykickers/kickers/internal/errors"
	"github.com/fridaykickers/kickers/pkg/api"
	"github.com/fridaykickers/kickers/pkg/club"
)

func usersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Show the roster and book drinks and payments",
	}
	cmd.AddCommand(
		usersListCmd(e),
		usersDrinkCmd(e),
		usersUndoCmd(e),
		usersPayCmd(e),
	)
	return cmd
}

func usersListCmd(e *env) *cobra.Command {
	var (
		all    bool
		search string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List club members with their tally",
		Long: `List club members with their beer tally and balance.

Examples:
  kickers users list
  kickers users list --all
  kickers users list --search anna`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := e.newSession()
			defer printToasts(s.toasts)()

			beers := s.club.Beers
			beers.SetFilter(club.UserFilter{Active: !all, Search: search})
			if err := beers.Load(cmd.Context()); err != nil {
				return remoteError(err)
			}
			writeUsers(os.Stdout, beers.State().Users)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include inactive members")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by name")

	return cmd
}

func usersDrinkCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "drink <user>",
		Short: "Book one beer",
		Long: `Book one beer for a member, identified by ID or name.

Examples:
  kickers users drink anna
  kickers users drink 64f1c2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutateUser(cmd.Context(), args[0], func(ctx context.Context, b *club.Beers, id string) error {
				return b.DrinkBeer(ctx, id)
			})
		},
	}
}

func usersUndoCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <user>",
		Short: "Take back the last booked beer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutateUser(cmd.Context(), args[0], func(ctx context.Context, b *club.Beers, id string) error {
				return b.UndoDrink(ctx, id)
			})
		},
	}
}

func usersPayCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "pay <user> <amount>",
		Short: "Book a payment in euros",
		Long: `Book a payment for a member. The balance is recomputed by the service.

Examples:
  kickers users pay anna 20
  kickers users pay anna 7,50`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return e.mutateUser(cmd.Context(), args[0], func(ctx context.Context, b *club.Beers, id string) error {
				return b.AddPayment(ctx, id, amount)
			})
		},
	}
}

// mutateUser loads the full roster, resolves ref and runs fn against it.
// The member's row is printed afterwards.
func (e *env) mutateUser(ctx context.Context, ref string, fn func(context.Context, *club.Beers, string) error) error {
	s := e.newSession()
	defer printToasts(s.toasts)()

	beers := s.club.Beers
	beers.SetFilter(club.UserFilter{Active: false})
	if err := beers.Load(ctx); err != nil {
		return remoteError(err)
	}

	u, err := findUser(beers.State().Users, ref)
	if err != nil {
		return err
	}
	if err := fn(ctx, beers, u.ID); err != nil {
		return remoteError(err)
	}

	if u, err := findUser(beers.State().Users, u.ID); err == nil {
		writeUsers(os.Stdout, []api.User{u})
	}
	return nil
}

// findUser matches ref against IDs first, then names case-insensitively.
// An ambiguous name is an error.
func findUser(users []api.User, ref string) (api.User, error) {
	for _, u := range users {
		if u.ID == ref {
			return u, nil
		}
	}
	var matches []api.User
	for _, u := range users {
		if strings.EqualFold(u.Name, ref) {
			return u, nil
		}
		if strings.Contains(strings.ToLower(u.Name), strings.ToLower(ref)) {
			matches = append(matches, u)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return api.User{}, errors.New("K401").
			WithDetail(fmt.Sprintf("no member matches %q", ref)).
			WithSuggestion("Run 'kickers users list --all' to see every member")
	default:
		names := make([]string, len(matches))
		for i, u := range matches {
			names[i] = u.Name
		}
		return api.User{}, errors.New("K400").
			WithDetail(fmt.Sprintf("%q matches %s", ref, strings.Join(names, ", "))).
			WithSuggestion("Use the member's full name or ID")
	}
}

// parseAmount accepts a positive euro amount with either decimal separator.
func parseAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || amount <= 0 {
		return 0, errors.New("K400").
			WithDetail(fmt.Sprintf("amount %q is not a positive number", s))
	}
	return amount, nil
}

func writeUsers(w io.Writer, users []api.User) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTODAY\tTOTAL\tBALANCE")
	for _, u := range users {
		name := u.Name
		if !u.Active {
			name += " (inactive)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t€%.2f\n", u.ID, name, u.BeersToday, u.BeersTotal, u.Balance)
	}
	tw.Flush()
}
