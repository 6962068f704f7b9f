// Command koictl drives the koiconsult API from a terminal: moderation,
// packages, the image library, profiles and ponds.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/simp-lee/koiconsult/internal/client"
	"github.com/simp-lee/koiconsult/internal/config"
	"github.com/simp-lee/koiconsult/internal/notify"
	"github.com/simp-lee/koiconsult/internal/overlay"
)

type CLI struct {
	Config  string `help:"Path to the console configuration file." default:"koictl.yaml" type:"path"`
	BaseURL string `help:"API root, overrides base_url." name:"base-url"`
	Token   string `help:"Bearer token, overrides token." env:"KOICTL_TOKEN"`

	Login          LoginCmd          `cmd:"" help:"Log in and print a token."`
	Register       RegisterCmd       `cmd:"" help:"Create a member account."`
	ForgotPassword ForgotPasswordCmd `cmd:"" name:"forgot-password" help:"Request a password reset email."`
	ResetPassword  ResetPasswordCmd  `cmd:"" name:"reset-password" help:"Set a new password with a reset token."`
	Blogs          BlogsCmd          `cmd:"" help:"Browse, write and moderate blogs."`
	Packages       PackagesCmd       `cmd:"" help:"Manage advertisement packages."`
	Images         ImagesCmd         `cmd:"" help:"Manage your image library."`
	Profile        ProfileCmd        `cmd:"" help:"Show or update your profile."`
	Users          UsersCmd          `cmd:"" help:"List member profiles (admin)."`
	Ponds          PondsCmd          `cmd:"" help:"Manage your koi ponds."`
	Pay            PayCmd            `cmd:"" help:"Start a package payment."`
}

// Env is shared by every command.
type Env struct {
	Ctx      context.Context
	API      *client.Client
	Notifier notify.Notifier
	Overlays *overlay.Registry
	PageSize int
	Out      io.Writer
}

func (cli *CLI) env(ctx context.Context) (*Env, func(), error) {
	cfg, err := config.LoadConsole(cli.Config)
	if err != nil {
		return nil, nil, err
	}
	if cli.BaseURL != "" {
		cfg.BaseURL = cli.BaseURL
	}
	if cli.Token != "" {
		cfg.Token = cli.Token
	}

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}
	api, err := client.New(cfg.BaseURL,
		client.WithSession(client.NewSession(cfg.Token)),
		client.WithLogger(log.Logger),
		client.WithTimeout(config.Duration(cfg.Timeout, 30*time.Second)),
	)
	if err != nil {
		_ = log.Close()
		return nil, nil, err
	}
	env := &Env{
		Ctx:      ctx,
		API:      api,
		Notifier: notify.NewLogger(log.Logger, os.Stderr),
		Overlays: overlay.NewRegistry(),
		PageSize: cfg.PageSize,
		Out:      os.Stdout,
	}
	return env, func() { _ = log.Close() }, nil
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("koictl"),
		kong.Description("Console for the koiconsult API."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, closeEnv, err := cli.env(ctx)
	kctx.FatalIfErrorf(err)
	defer closeEnv()

	if err := kctx.Run(env); err != nil {
		if isReported(err) {
			closeEnv()
			os.Exit(1)
		}
		kctx.FatalIfErrorf(err)
	}
}
