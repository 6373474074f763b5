package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrsteele09/ttb-portal/auth"
	"github.com/jrsteele09/ttb-portal/internal/config"
	"github.com/jrsteele09/ttb-portal/store"
	"github.com/jrsteele09/ttb-portal/store/filestore"
	"github.com/jrsteele09/ttb-portal/store/memstore"
	"github.com/jrsteele09/ttb-portal/store/redisstore"
	"github.com/jrsteele09/ttb-portal/transport"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

type appOptions struct {
	backend  string
	remember bool
	in       io.Reader
	out      io.Writer
}

// app wires the configured store, transport and session service for one command.
type app struct {
	config   config.Config
	store    store.Store
	service  *auth.Service
	remember bool
	in       *bufio.Reader
	termFd   int // stdin descriptor when it is a terminal, -1 otherwise
	out      io.Writer
	closers  []func() error
}

func newApp(ctx context.Context, c config.Config, opts appOptions) (*app, error) {
	a := &app{
		config:   c,
		remember: opts.remember,
		in:       bufio.NewReader(opts.in),
		termFd:   -1,
		out:      opts.out,
	}
	if f, ok := opts.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		a.termFd = int(f.Fd())
	}

	backend := opts.backend
	if backend == "" {
		backend = c.GetStoreBackend()
	}
	st, err := a.openStore(ctx, backend)
	if err != nil {
		return nil, err
	}
	a.store = st

	client := transport.New(c.GetAPIBaseURL(), store.NewTokenSource(st), transport.WithTimeout(c.GetAPITimeout()))
	a.service, err = auth.NewService(st, client, c)
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := a.service.Restore(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context, backend string) (store.Store, error) {
	switch backend {
	case config.StoreBackendMemory:
		return memstore.New(), nil

	case config.StoreBackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: a.config.GetRedisAddr()})
		a.closers = append(a.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", a.config.GetRedisAddr(), err)
		}
		return redisstore.New(rdb, a.config.GetRedisPrefix(), a.config.GetRedisSessionTTL()), nil

	case config.StoreBackendFile:
		path := a.config.GetStorePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create session directory: %w", err)
		}
		log.Debug().Str("path", path).Bool("sealed", a.config.GetStorePassphrase() != "").Msg("using session file")
		return filestore.New(path, a.config.GetStorePassphrase()), nil

	default:
		return nil, fmt.Errorf("unknown session store %q", backend)
	}
}

func (a *app) Close() {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}

// prompt prints label and reads one trimmed line. A closed input returns io.EOF.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads a line without echo when stdin is a terminal, and a plain line otherwise.
func (a *app) promptSecret(label string) (string, error) {
	if a.termFd < 0 {
		return a.prompt(label)
	}
	fmt.Fprint(a.out, label)
	secret, err := term.ReadPassword(a.termFd)
	fmt.Fprintln(a.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
