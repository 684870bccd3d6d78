package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the dashboard backend",
	Long:  "Exchanges a username and password for an access token and keeps it for the other commands.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.log.Sync() }()

		username := firstNonEmpty(loginUsername, a.cfg.Auth.Username)
		password := firstNonEmpty(loginPassword, a.cfg.Auth.Password)
		in := bufio.NewReader(cmd.InOrStdin())
		if username == "" {
			if username, err = prompt(cmd.OutOrStdout(), in, "Username: "); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = prompt(cmd.OutOrStdout(), in, "Password: "); err != nil {
				return err
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.API.Timeout)
		defer cancel()

		if err := a.session.Login(ctx, a.api, username, password); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged in as", username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.session.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username (default from auth.username)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (default from auth.password)")
}

func prompt(out io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	input, err := in.ReadString('\n')
	if err != nil && input == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
