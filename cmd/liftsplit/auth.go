package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newRegisterCmd() *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" {
				return errors.New("--username and --email are required")
			}
			secret, err := readSecret(password)
			if err != nil {
				return err
			}
			_, cli, err := session(false)
			if err != nil {
				return err
			}
			user, err := cli.Register(cmd.Context(), username, email, secret)
			if err != nil {
				return err
			}
			cmd.Printf("Registered %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store an access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(username) == "" {
				return errors.New("--username is required")
			}
			secret, err := readSecret(password)
			if err != nil {
				return err
			}
			cfg, cli, err := session(false)
			if err != nil {
				return err
			}
			token, err := cli.Login(cmd.Context(), username, secret)
			if err != nil {
				return err
			}
			cfg.AccessToken = token.AccessToken
			cfg.Username = username
			if err := saveConfig(cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			cmd.Printf("Logged in as %s (token expires %s)\n", username, token.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.AccessToken = ""
			cfg.Username = ""
			if err := saveConfig(cfg); err != nil {
				return err
			}
			cmd.Println("Logged out")
			return nil
		},
	}
}

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cli, err := session(true)
			if err != nil {
				return err
			}
			user, err := cli.Me(cmd.Context(), cfg.AccessToken)
			if err != nil {
				return err
			}
			cmd.Printf("%d\t%s\t%s\n", user.ID, user.Username, user.Email)
			return nil
		},
	}
}

func readSecret(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Print("Password: ")
	bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Print("\n")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(bytes), nil
}
