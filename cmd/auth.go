package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"github.com/telegram-mcp/telegram-mcp/internal/session"
)

func newAuthCmd() *cobra.Command {
	var (
		apiID      string
		apiHash    string
		phone      string
		sessionDir string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in to Telegram and save the session",
		Long: `Interactively sign in to Telegram with a phone number.

You will be prompted for the login code Telegram sends to your account
(and your 2FA password if one is set). On success the credentials and the
session are persisted so the server's auto_connect tool can reuse them.

Get an API ID and hash at https://my.telegram.org.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(apiID, apiHash, phone, sessionDir)
		},
	}

	cmd.Flags().StringVar(&apiID, "api-id", "", "Telegram API ID")
	cmd.Flags().StringVar(&apiHash, "api-hash", "", "Telegram API hash")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number in international format (e.g. +15551234567)")
	cmd.Flags().StringVar(&sessionDir, "session-dir", "", "Directory for credentials and session files (default: user config dir)")

	_ = cmd.MarkFlagRequired("api-id")
	_ = cmd.MarkFlagRequired("api-hash")
	_ = cmd.MarkFlagRequired("phone")

	return cmd
}

// termAuth answers the interactive authentication prompts from stdin.
type termAuth struct {
	phone string
	in    *bufio.Reader
}

func (a termAuth) Phone(_ context.Context) (string, error) {
	return a.phone, nil
}

func (a termAuth) Password(_ context.Context) (string, error) {
	fmt.Print("2FA password: ")
	return a.readLine()
}

func (a termAuth) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	fmt.Print("Login code: ")
	return a.readLine()
}

func (a termAuth) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return nil
}

func (a termAuth) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("account sign-up is not supported; register the number in a Telegram app first")
}

func (a termAuth) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runAuth(apiID, apiHash, phone, sessionDir string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	creds := &session.Credentials{
		APIID:       apiID,
		APIHash:     apiHash,
		PhoneNumber: phone,
	}
	id, err := creds.ParseAPIID()
	if err != nil {
		return err
	}

	store := session.NewStore(sessionDir)

	client := telegram.NewClient(id, apiHash, telegram.Options{
		SessionStorage: store.Storage(),
		Device: telegram.DeviceConfig{
			DeviceModel:   "telegram-mcp",
			SystemVersion: runtime.GOOS,
			AppVersion:    version,
		},
	})

	err = client.Run(ctx, func(ctx context.Context) error {
		flow := auth.NewFlow(
			termAuth{phone: phone, in: bufio.NewReader(os.Stdin)},
			auth.SendCodeOptions{},
		)
		if err := client.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}

		self, err := client.Self(ctx)
		if err != nil {
			return fmt.Errorf("failed to load own identity: %w", err)
		}

		name := self.FirstName
		if self.Username != "" {
			name = fmt.Sprintf("%s (@%s)", name, self.Username)
		}
		fmt.Printf("Signed in as %s\n", name)
		return nil
	})
	if err != nil {
		return err
	}

	// The session blob is written by the storage during the flow; persist
	// the credentials next to it for auto_connect.
	if err := store.SaveCredentials(creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Printf("Credentials and session saved to %s\n", store.Dir())
	return nil
}
