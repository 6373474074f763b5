package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/ttb-portal/internal/config"
	"github.com/jrsteele09/ttb-portal/internal/logging"
)

const usage = `usage: ttbportal [flags] <command>

commands:
  login     sign in, registering a phone and verifying a code when asked
  status    show whether a session is active
  profile   show the signed in user's profile
  logout    end the session and remove stored data

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

type commandFunc func(ctx context.Context, a *app) error

var commands = map[string]commandFunc{
	"login":   cmdLogin,
	"status":  cmdStatus,
	"profile": cmdProfile,
	"logout":  cmdLogout,
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("ttbportal", flag.ContinueOnError)
	fs.SetOutput(out)
	envFile := fs.String("env-file", ".env", "dotenv file with configuration defaults")
	backend := fs.String("store", "", "session store backend: file, redis or memory (default $SESSION_STORE)")
	remember := fs.Bool("remember", false, "ask the server to remember this device after verification")
	noBanner := fs.Bool("no-banner", false, "do not print the banner")
	fs.Usage = func() {
		fmt.Fprint(out, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cmd, ok := commands[fs.Arg(0)]
	if !ok || fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}

	config.LoadDotEnv(*envFile)
	c := config.New()
	logging.Setup(c.GetLogLevel(), nil)
	if !*noBanner {
		displayAppname(out, c.GetAppName())
	}

	a, err := newApp(ctx, c, appOptions{backend: *backend, remember: *remember, in: in, out: out})
	if err != nil {
		return err
	}
	defer a.Close()

	return cmd(ctx, a)
}

func displayAppname(out io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(out, myFigure.String())
}
