package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikolayk812/storefront/internal/app"
	"github.com/nikolayk812/storefront/internal/cli"
)

const closeTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config path (optional, defaults to ~/.config/storefront/config.toml)")
	flag.Usage = func() { cli.Usage(os.Stderr) }
	flag.Parse()

	if flag.NArg() == 0 {
		cli.Usage(os.Stderr)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Open(ctx, app.Options{ConfigPath: *configPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		return 1
	}

	runErr := cli.Run(ctx, cli.Deps{
		Shop:    a.Shop,
		Catalog: a.Catalog,
		Account: a.Account,
	}, flag.Args(), os.Stdout)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), closeTimeout)
	defer closeCancel()
	if err := a.Close(closeCtx); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: close: %v\n", err)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", runErr)
		if errors.Is(runErr, cli.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}
