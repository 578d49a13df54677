/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "transmission-tui:", err)
		os.Exit(1)
	}
}

func run() error {
	cli, err := ParseCLI(os.Args[1:])
	if err != nil {
		return err
	}
	cfg, err := BuildConfig(cli)
	if err != nil {
		return fmt.Errorf("failed to build configuration: %w", err)
	}

	logger, closeLogger, err := NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer closeLogger()
	logger.Info().Str("endpoint", cfg.RPC.Endpoint).Dur("poll_interval", cfg.PollInterval).Msg("starting transmission-tui")

	screen, err := setupScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			restoreScreen(screen)
			panic(r)
		}
		restoreScreen(screen)
	}()

	client := NewClient(cfg.RPC, logger)

	events := make(chan Event, 64)
	commands := make(chan Command, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := NewWorker(WorkerConfig{
		Client:       client,
		Events:       events,
		Commands:     commands,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	})
	go worker.Run(ctx)

	inputDone := make(chan struct{})
	defer close(inputDone)
	go RunInputReader(screen, events, inputDone)

	go RunConfigWatcher(ctx, cli, logger, commands)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		events <- InputEvent{TermEvent: tcell.NewEventInterrupt(nil)}
	}()

	app := NewApp(commands)
	commands <- FetchSnapshotCommand{}

	Draw(screen, app)
	for ev := range events {
		if ie, ok := ev.(InputEvent); ok {
			if _, isInterrupt := ie.TermEvent.(*tcell.EventInterrupt); isInterrupt {
				break
			}
		}
		app.HandleEvent(ev)
		Draw(screen, app)
		if app.ShouldQuit() {
			break
		}
	}

	cancel()
	close(commands)
	logger.Info().Msg("shutting down")
	return nil
}

func setupScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnablePaste()
	screen.Clear()
	return screen, nil
}

func restoreScreen(screen tcell.Screen) {
	screen.DisablePaste()
	screen.Fini()
}

