package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *console) newOTPCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "otp",
		Short:             "Manage the one-time-password second factor",
		PersistentPreRunE: c.requireSession,
	}

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether the second factor is enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := c.otp.GetStatus(cmd.Context())
			if err != nil {
				return err
			}
			if status.OTPEnabled {
				fmt.Println("enabled")
			} else {
				fmt.Println("disabled")
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "enroll",
		Short: "Enroll an authenticator: generate a secret, then confirm with a code",
		RunE: func(cmd *cobra.Command, args []string) error {
			enrollment, err := c.otp.Generate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Secret: %s\n\nScan the QR payload with your authenticator:\n%s\n\n", enrollment.Secret, enrollment.QRCode)

			code, err := promptLine("Code from authenticator: ")
			if err != nil {
				return err
			}
			codes, err := c.otp.Enable(cmd.Context(), code)
			if err != nil {
				return err
			}

			// Shown exactly once; nothing is cached locally.
			fmt.Println("Second factor enabled. Backup codes (store them now, they will not be shown again):")
			for _, backup := range codes.BackupCodes {
				fmt.Println("  " + backup)
			}
			return nil
		},
	})

	var disableCode string
	disable := &cobra.Command{
		Use:   "disable",
		Short: "Turn the second factor off (requires a valid code)",
		RunE: func(cmd *cobra.Command, args []string) error {
			code := disableCode
			if code == "" {
				var err error
				if code, err = promptLine("Code from authenticator: "); err != nil {
					return err
				}
			}
			if err := c.otp.Disable(cmd.Context(), code); err != nil {
				return err
			}
			fmt.Println("Second factor disabled")
			return nil
		},
	}
	disable.Flags().StringVar(&disableCode, "code", "", "Current 6-digit code (prompted when omitted)")
	root.AddCommand(disable)

	root.AddCommand(&cobra.Command{
		Use:   "backup-codes",
		Short: "Show the remaining backup codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := c.otp.GetBackupCodes(cmd.Context())
			if err != nil {
				return err
			}
			for _, backup := range codes {
				fmt.Println(backup)
			}
			return nil
		},
	})

	return root
}
