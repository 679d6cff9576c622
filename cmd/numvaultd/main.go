package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/numvault/internal/logging"
	"github.com/danmuck/numvault/internal/server"
	"github.com/danmuck/numvault/internal/store"
)

func main() {
	logging.ConfigureRuntime()

	var (
		configPath = flag.String("config", "", "path to TOML config file")
		listenAddr = flag.String("listen", "", "UDP listen address override")
		adminAddr  = flag.String("admin", "", "HTTP admin listen address override")
		dataDir    = flag.String("data", "", "data directory override")
	)
	flag.Parse()

	cfg := server.DefaultConfig()
	if *configPath != "" {
		loaded, err := loadConfig(*configPath, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "numvaultd: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *adminAddr != "" {
		cfg.AdminListenAddr = *adminAddr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	pool, err := store.Open(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "numvaultd: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg, pool).Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "numvaultd: %v\n", err)
		os.Exit(1)
	}
}
