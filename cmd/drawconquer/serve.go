package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cordellbonnieux/Draw-And-Conquer/internal/config"
	"github.com/cordellbonnieux/Draw-And-Conquer/internal/debugecho"
	"github.com/cordellbonnieux/Draw-And-Conquer/internal/game"
	"github.com/cordellbonnieux/Draw-And-Conquer/internal/logging"
	"github.com/cordellbonnieux/Draw-And-Conquer/internal/matchmaker"
	"github.com/cordellbonnieux/Draw-And-Conquer/internal/watchdog"
	"github.com/cordellbonnieux/Draw-And-Conquer/internal/wsproto"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the matchmaker and game servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := bindConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(config.Load(v))
		},
	}

	config.BindFlags(cmd.Flags())
	return cmd
}

func runServe(cfg config.Config) error {
	log, err := logging.New()
	if err != nil {
		return err
	}
	defer log.Sync()

	mmState := matchmaker.NewState(cfg.LobbySize, cfg.HeartbeatTimeout)
	registry := game.NewRegistry()

	matchmakerAddr := fmt.Sprintf("%s:%d", cfg.Host, cfg.MatchmakerPort)
	gameAddr := fmt.Sprintf("%s:%d", cfg.Host, cfg.GamePort)

	matchmakerLog := log.Named("matchmaker")
	gameLog := log.Named("game")
	matchmakerListener := wsproto.NewListener(matchmakerAddr, mmState, func(conn *wsproto.Conn, addr, message string, state *matchmaker.State) {
		matchmaker.Handle(conn, addr, message, state, matchmakerLog)
	}, matchmakerLog)
	gameListener := wsproto.NewListener(gameAddr, registry, func(conn *wsproto.Conn, addr, message string, state *game.Registry) {
		game.Handle(conn, addr, message, state, gameLog)
	}, gameLog)

	queueWatchdog := &watchdog.QueueWatchdog{
		Matchmaker:             mmState,
		Registry:               registry,
		NumTiles:               cfg.NumTiles,
		ColourSelectionTimeout: cfg.ColourSelectionTimeout,
		Log:                    log.Named("queue_watchdog"),
	}
	sessionWatchdog := &watchdog.SessionWatchdog{
		Registry: registry,
		Log:      log.Named("session_watchdog"),
	}

	stop := make(chan struct{})
	go queueWatchdog.Run(stop)
	go sessionWatchdog.Run(stop)

	errs := make(chan error, 3)
	go func() { errs <- matchmakerListener.Serve() }()
	go func() { errs <- gameListener.Serve() }()

	debugAddr := fmt.Sprintf("%s:%d", cfg.Host, cfg.GamePort+1)
	debugServer := &http.Server{Addr: debugAddr, Handler: debugecho.Handler(log.Named("debugecho"))}
	go func() { errs <- debugServer.ListenAndServe() }()

	log.Infow("servers started",
		"matchmaker_addr", matchmakerAddr,
		"game_addr", gameAddr,
		"debug_addr", debugAddr,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infow("shutting down", "signal", sig.String())
		close(stop)
		return nil
	case err := <-errs:
		close(stop)
		return err
	}
}
