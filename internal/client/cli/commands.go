package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/buildinfo"
	"github.com/dmitrijs2005/gophauth/internal/client/authclient"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/auth/password"
	"github.com/spf13/cobra"
)

// TokenEnv names the environment variable holding the default bearer token.
const TokenEnv = "GOPHAUTH_TOKEN"

const callTimeout = 15 * time.Second

var errRejected = errors.New("password rejected")

// authAPI is the part of authclient.GRPCClient the commands use.
type authAPI interface {
	Register(ctx context.Context, userName, email, fullName, password string) error
	Login(ctx context.Context, identifier, password string) (*authclient.Token, error)
	Profile(ctx context.Context) (*authclient.Profile, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) error
	Ping(ctx context.Context) error
	SetToken(token string)
	Close() error
}

// newClient is a test seam.
var newClient = func(addr string) (authAPI, error) {
	return authclient.New(addr)
}

type rootOptions struct {
	addr  string
	token string
	in    *bufio.Reader
}

// NewRootCommand builds the authctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "authctl",
		Short:         "Command-line tool for the gophauth server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.in = bufio.NewReader(cmd.InOrStdin())
		},
	}

	root.PersistentFlags().StringVar(&opts.addr, "addr", "localhost:50051", "gophauth gRPC address")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv(TokenEnv), "bearer token (defaults to $"+TokenEnv+")")

	root.AddCommand(
		newHashCommand(opts),
		newCheckCommand(opts),
		newRegisterCommand(opts),
		newLoginCommand(opts),
		newProfileCommand(opts),
		newPasswdCommand(opts),
		newPingCommand(opts),
		newVersionCommand(),
	)

	return root
}

// readPassword prompts for a password and returns it as a string, wiping
// the raw buffer.
func (o *rootOptions) readPassword(cmd *cobra.Command, prompt string) (string, error) {
	pw, err := GetPassword(o.in, prompt, cmd.ErrOrStderr())
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// withClient dials the server and runs fn with a bounded context.
func (o *rootOptions) withClient(cmd *cobra.Command, fn func(ctx context.Context, c authAPI) error) error {
	c, err := newClient(o.addr)
	if err != nil {
		return err
	}
	defer c.Close()

	if o.token != "" {
		c.SetToken(o.token)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
	defer cancel()

	return fn(ctx, c)
}

func printVerdict(w io.Writer, v password.Verdict) {
	if v.Accepted() {
		fmt.Fprintln(w, "password accepted")
		return
	}
	fmt.Fprintln(w, "password rejected:")
	for _, r := range v.Failed {
		fmt.Fprintf(w, "  - %s\n", r.Describe())
	}
}

func newHashCommand(opts *rootOptions) *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Print the bcrypt hash of a password that passes the policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := opts.readPassword(cmd, "Password")
			if err != nil {
				return err
			}

			v := password.Evaluate(pw)
			if !v.Accepted() {
				printVerdict(cmd.ErrOrStderr(), v)
				return errRejected
			}

			hash, err := auth.NewBcryptHasher(cost).Hash(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", auth.DefaultCost, "bcrypt cost")
	return cmd
}

func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check a password against the policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := opts.readPassword(cmd, "Password")
			if err != nil {
				return err
			}

			v := password.Evaluate(pw)
			printVerdict(cmd.OutOrStdout(), v)
			if !v.Accepted() {
				return errRejected
			}
			return nil
		},
	}
}

func newRegisterCommand(opts *rootOptions) *cobra.Command {
	var email, fullName string

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := opts.readPassword(cmd, "Password")
			if err != nil {
				return err
			}

			return opts.withClient(cmd, func(ctx context.Context, c authAPI) error {
				if err := c.Register(ctx, args[0], email, fullName, pw); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "User registered.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&fullName, "full-name", "", "full name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username|email>",
		Short: "Log in and print a bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := opts.readPassword(cmd, "Password")
			if err != nil {
				return err
			}

			return opts.withClient(cmd, func(ctx context.Context, c authAPI) error {
				tok, err := c.Login(ctx, args[0], pw)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
				fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", tok.ExpiresAt.Format(time.RFC3339))
				return nil
			})
		},
	}
}

func newProfileCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the account the token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c authAPI) error {
				p, err := c.Profile(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "username:  %s\n", p.UserName)
				fmt.Fprintf(w, "email:     %s\n", p.Email)
				fmt.Fprintf(w, "full name: %s\n", p.FullName)
				return nil
			})
		},
	}
}

func newPasswdCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of the token's account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prompts := []string{"Current password", "New password", "Confirm new password"}
			values := make([]string, len(prompts))
			for i, p := range prompts {
				v, err := opts.readPassword(cmd, p)
				if err != nil {
					return err
				}
				values[i] = v
			}

			return opts.withClient(cmd, func(ctx context.Context, c authAPI) error {
				if err := c.ChangePassword(ctx, values[0], values[1], values[2]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Password changed.")
				return nil
			})
		},
	}
}

func newPingCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c authAPI) error {
				if err := c.Ping(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			})
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}
