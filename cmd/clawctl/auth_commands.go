package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/openclusterclaw/clawctl/session"
)

func (c *console) newLoginCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the control plane",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				var err error
				if username, err = promptLine("Username: "); err != nil {
					return err
				}
			}
			if password == "" {
				var err error
				if password, err = promptPassword("Password: "); err != nil {
					return err
				}
			}

			login, err := session.NewLogin(c.apiClient, c.tokens)
			if err != nil {
				return err
			}

			phase, err := login.Submit(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			// OTP step-up: retry with fresh codes against the same temp token
			// until it succeeds, the user cancels, or the token expires
			// server-side.
			for phase == session.PhaseOTPRequired {
				code, err := promptLine("One-time password (empty to cancel): ")
				if err != nil {
					return err
				}
				if code == "" {
					if _, err := login.Cancel(); err != nil {
						return err
					}
					return fmt.Errorf("login cancelled")
				}
				phase, err = login.VerifyOTP(cmd.Context(), code)
				if err != nil {
					fmt.Fprintf(os.Stderr, "verification failed: %v\n", err)
				}
			}

			user := c.tokens.User()
			if user != nil {
				fmt.Printf("Logged in as %s (tenant %s, role %s)\n", user.Username, user.TenantID, user.Role)
			} else {
				fmt.Println("Logged in")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted when omitted)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

func (c *console) newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.tokens.IsAuthenticated() {
				// Best effort server-side invalidation; local state is
				// cleared regardless.
				if err := c.apiClient.Logout(cmd.Context()); err != nil {
					log.Debug().Err(err).Msg("server-side logout failed")
				}
			}
			if err := c.tokens.ClearTokens(); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func (c *console) newWhoamiCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:     "whoami",
		Short:   "Show the current user",
		PreRunE: c.requireSession,
		RunE: func(cmd *cobra.Command, args []string) error {
			if refresh {
				user, err := c.apiClient.Me(cmd.Context())
				if err != nil {
					return err
				}
				return c.printJSON(user)
			}
			user := c.tokens.User()
			if user == nil {
				return fmt.Errorf("no cached profile; try 'clawctl whoami --refresh'")
			}
			return c.printJSON(user)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch the profile from the control plane instead of the cache")
	return cmd
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
