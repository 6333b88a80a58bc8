package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dimaq12/hexsweeper/config"
	"github.com/dimaq12/hexsweeper/engine"
	"github.com/dimaq12/hexsweeper/game"
	"github.com/dimaq12/hexsweeper/models"
	"github.com/dimaq12/hexsweeper/score"
	"github.com/dimaq12/hexsweeper/storage"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	difficulty := flag.String("difficulty", "", "Easy, Medium or Hard (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *difficulty != "" {
		cfg.Difficulty = *difficulty
	}

	// stdout belongs to the terminal UI, so logs always go to a file here
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = "hexsweeper.log"
	}
	log, closer, err := config.NewLogger(cfg.LogLevel, logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closer.Close()

	registry := models.DefaultRegistry()
	if _, err := registry.Lookup(cfg.Difficulty); err != nil {
		fmt.Fprintf(os.Stderr, "%v; choose one of %v\n", err, registry.Names())
		os.Exit(2)
	}

	leaderboard := score.NewLeaderboard(storage.NewFS(cfg.ScoresDir), log)
	service := game.NewGameService(registry, leaderboard, log,
		engine.WithPlacer(engine.PlacerByName(cfg.Placement, cfg.Seed)))
	controller := game.NewGameController(service, registry)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		controller.TerminateGame()
	}()

	log.WithField("difficulty", cfg.Difficulty).Info("starting hexsweeper")
	if err := controller.StartGame(cfg.Difficulty); err != nil {
		log.WithError(err).Error("game stopped")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("Thanks for playing.")
}
