package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fridaykickers/kickers/internal/errors"
)

func loginCmd(e *env) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and store the token",
		Long: `Log in to the club service. The bearer token is stored in
api.token_file and sent with every later request.

The password is read from --password or, when omitted, from the first
line of standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("K400").WithDetail("no password given").Wrap(err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			s := e.newSession()
			s.auth.SetLoading(true)
			defer s.auth.SetLoading(false)

			token, err := s.login.Login(cmd.Context(), args[0], password)
			if err != nil {
				return remoteError(err)
			}
			if err := s.auth.Login(token); err != nil {
				return remoteError(err)
			}
			success("Logged in as %s", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (read from stdin when empty)")

	return cmd
}

func logoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := e.newSession()
			if !s.auth.Valid() {
				info("Not logged in")
				return nil
			}
			if err := s.login.Logout(cmd.Context()); err != nil {
				e.logger.Warn("remote logout failed", "error", err)
			}
			if err := s.auth.Logout(); err != nil {
				return fmt.Errorf("remove token: %w", err)
			}
			success("Logged out")
			return nil
		},
	}
}
