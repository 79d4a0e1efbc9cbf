package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCommand(c *commandContext) *cobra.Command {
	var register bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, password, err := promptCredentials()
			if err != nil {
				return err
			}
			return c.run(func(ctx context.Context) error {
				var sessErr error
				if register {
					_, sessErr = c.sessions.Register(ctx, c.client, username, password)
				} else {
					_, sessErr = c.sessions.Login(ctx, c.client, username, password)
				}
				if sessErr != nil {
					return sessErr
				}
				fmt.Printf("✓ Logged in as @%s\n", username)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&register, "register", false, "Create a new account instead")
	return cmd
}

func newLogoutCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session and cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(func(ctx context.Context) error {
				c.sessions.Logout()
				fmt.Println("✓ Logged out")
				return nil
			})
		},
	}
}

func newWhoamiCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(func(ctx context.Context) error {
				if !c.sessions.IsAuthenticated() {
					fmt.Println("not signed in")
					return nil
				}
				if err := c.sessions.Bootstrap(ctx, c.client); err != nil {
					return err
				}
				sess, ok := c.sessions.Current()
				if !ok {
					fmt.Println("not signed in")
					return nil
				}
				fmt.Printf("@%s · following %d\n", sess.Username, sess.FollowingCount)
				return nil
			})
		},
	}
}

func promptCredentials() (string, string, error) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return "", "", fmt.Errorf("failed to read username: %w", err)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "", "", fmt.Errorf("username cannot be empty")
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return "", "", fmt.Errorf("password cannot be empty")
	}
	return username, string(password), nil
}
