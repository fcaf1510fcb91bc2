package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"hash/maphash"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/minesweeper-board/internal/config"
	"github.com/vancomm/minesweeper-board/internal/mines"
)

var log = logrus.New()

var (
	preset    string
	seed      string
	placement string
)

func init() {
	flag.StringVar(&preset, "preset", "", "start a game with this preset right away")
	flag.StringVar(&seed, "seed", "", "seed for the first game")
	flag.StringVar(&placement, "placement", "", "bomb placement: shuffled or row_major (default from MINES_PLACEMENT)")
}

func setupLogging() error {
	logLevel := logrus.WarnLevel
	if config.Development() {
		logLevel = logrus.DebugLevel
	}
	log.SetLevel(logLevel)
	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	logFile, ok := os.LookupEnv("MINES_LOG_FILE")
	if !ok || logFile == "" {
		return nil
	}

	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   logFile,
		MaxSize:    5,
		MaxBackups: 3,
		MaxAge:     28,
		Level:      logrus.DebugLevel,
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	log.AddHook(hook)
	// the file gets everything; the terminal is left to the game
	log.SetLevel(logrus.DebugLevel)
	log.SetOutput(io.Discard)
	return nil
}

// run reads commands from in until it is exhausted or a quit command.
func (h *harness) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(h.out, "> ")
	for scanner.Scan() {
		err := h.execute(scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			log.WithError(err).Debug("command failed")
			fmt.Fprintln(h.out, "error:", err)
		}
		fmt.Fprint(h.out, "> ")
	}
	return scanner.Err()
}

func main() {
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatal("unable to load .env: ", err)
	}

	if err := setupLogging(); err != nil {
		log.Fatal(err)
	}

	minesLog := log.WriterLevel(logrus.DebugLevel)
	defer minesLog.Close()
	mines.Log = slog.New(slog.NewTextHandler(minesLog, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p, err := config.Placement()
	if placement != "" {
		p, err = mines.ParsePlacement(placement)
	}
	if err != nil {
		log.Fatal(err)
	}

	rnd := rand.New(rand.NewPCG(new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64()))
	h := newHarness(log, os.Stdout, rnd, p)

	if preset != "" {
		d, ok := mines.Preset(preset)
		if !ok {
			log.Fatalf("unknown preset %q", preset)
		}
		if err := h.start(d, seed); err != nil {
			log.Fatal(err)
		}
	} else {
		fmt.Fprint(h.out, help)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- h.run(os.Stdin)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(h.out)
	case err := <-done:
		if err != nil {
			log.WithError(err).Error("unable to read commands")
		}
	}
}
