/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WorkerConfig wires a Worker to its channels and RPC client.
type WorkerConfig struct {
	Client       *Client
	Events       chan<- Event
	Commands     <-chan Command
	PollInterval time.Duration // zero disables automatic polling (on-demand mode)
	Logger       zerolog.Logger
}

// Worker is the RPC Worker actor of spec.md §2/§4.2: it owns the Client,
// translates Commands into RPC calls, and reports results as Events. It
// never reads UI state directly — everything it needs travels on a
// Command, and everything it learns travels back on an Event.
type Worker struct {
	client       *Client
	events       chan<- Event
	commands     <-chan Command
	pollInterval time.Duration
	logger       zerolog.Logger
}

func NewWorker(cfg WorkerConfig) *Worker {
	return &Worker{
		client:       cfg.Client,
		events:       cfg.Events,
		commands:     cfg.Commands,
		pollInterval: cfg.PollInterval,
		logger:       cfg.Logger.With().Str("component", "rpc_worker").Str("worker_id", uuid.NewString()[:8]).Logger(),
	}
}

// Run blocks until ctx is cancelled or the commands channel closes. In
// polling mode each wait for a command times out after PollInterval, and a
// timeout triggers an automatic snapshot refresh, so automatic refreshes
// happen only once the command queue has been idle for that long; in
// on-demand mode (PollInterval <= 0) the nil timeout channel never fires
// and refreshes happen only in response to an explicit FetchSnapshotCommand.
func (w *Worker) Run(ctx context.Context) {
	for {
		var tickC <-chan time.Time
		if w.pollInterval > 0 {
			tickC = time.After(w.pollInterval)
		}

		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-w.commands:
			if !ok {
				return
			}
			w.handleCommand(ctx, cmd)
		case <-tickC:
			w.fetchSnapshot(ctx)
		}
	}
}

func (w *Worker) handleCommand(ctx context.Context, cmd Command) {
	switch c := cmd.(type) {
	case FetchSnapshotCommand:
		w.fetchSnapshot(ctx)
	case FetchPreferencesCommand:
		w.fetchPreferences(ctx)
	case UpdatePreferencesCommand:
		w.updatePreferences(ctx, c.Preferences)
	case AddMagnetCommand:
		w.addMagnet(ctx, c.URI)
	case RemoveTorrentsCommand:
		w.removeTorrents(ctx, c)
	case StartTorrentsCommand:
		w.startTorrents(ctx, c)
	case StopTorrentsCommand:
		w.stopTorrents(ctx, c)
	case ReconfigureCommand:
		w.reconfigure(c.Config)
	}
}

func (w *Worker) emit(ev Event) {
	w.events <- ev
}

func (w *Worker) emitError(action string, err error) {
	w.logger.Error().Err(err).Str("action", action).Msg("rpc call failed")
	w.emit(StatusEvent{Level: StatusError, Message: fmt.Sprintf("Failed to %s: %s", action, err.Error())})
}

func (w *Worker) fetchSnapshot(ctx context.Context) {
	snap, err := w.client.FetchSnapshot(ctx)
	if err != nil {
		w.emitError("refresh", err)
		return
	}
	w.emit(SnapshotEvent{Snapshot: snap})
}

func (w *Worker) fetchPreferences(ctx context.Context) {
	prefs, err := w.client.FetchPreferences(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("fetch preferences failed")
	}
	w.emit(PreferencesEvent{Preferences: prefs, Err: err})
}

func (w *Worker) updatePreferences(ctx context.Context, prefs DaemonPreferences) {
	updated, err := w.client.UpdatePreferences(ctx, prefs)
	if err != nil {
		w.logger.Error().Err(err).Msg("update preferences failed")
		w.emit(PreferencesEvent{Preferences: updated, Err: err})
		return
	}
	w.emit(PreferencesEvent{Preferences: updated})
	w.emit(StatusEvent{Level: StatusSuccess, Message: "Preferences saved"})
}

func (w *Worker) addMagnet(ctx context.Context, uri string) {
	if strings.TrimSpace(uri) == "" {
		w.emit(StatusEvent{Level: StatusInfo, Message: "Nothing to add"})
		return
	}

	if hash, err := magnetInfoHash(uri); err == nil && hash != "" {
		w.logger.Debug().Str("info_hash", hash).Msg("adding magnet")
	}

	outcome, err := w.client.AddMagnet(ctx, uri)
	if err != nil {
		w.emitError("add magnet", err)
		return
	}

	switch {
	case outcome.Duplicate:
		w.emit(StatusEvent{Level: StatusWarning, Message: fmt.Sprintf("Magnet already present (%s)", describeOutcome(outcome))})
		w.emit(FocusTorrentEvent{ID: outcome.ID})
	case outcome.Added:
		w.emit(StatusEvent{Level: StatusSuccess, Message: fmt.Sprintf("Added %s", describeOutcome(outcome))})
		w.emit(FocusTorrentEvent{ID: outcome.ID})
	default:
		w.emit(StatusEvent{Level: StatusWarning, Message: "Daemon did not report an outcome for the magnet"})
		return
	}
	w.fetchSnapshot(ctx)
}

func describeOutcome(o AddMagnetOutcome) string {
	if o.Name != "" {
		return o.Name
	}
	return "torrent"
}

func (w *Worker) removeTorrents(ctx context.Context, c RemoveTorrentsCommand) {
	if len(c.IDs) == 0 {
		return
	}
	if err := w.client.RemoveTorrents(ctx, c.IDs, c.DeleteLocalData); err != nil {
		w.emitError(fmt.Sprintf("remove %s", c.Name), err)
		return
	}
	w.emit(StatusEvent{Level: StatusSuccess, Message: fmt.Sprintf("Removed %s", c.Name)})
	w.fetchSnapshot(ctx)
}

func (w *Worker) startTorrents(ctx context.Context, c StartTorrentsCommand) {
	if len(c.IDs) == 0 {
		return
	}
	if err := w.client.StartTorrents(ctx, c.IDs); err != nil {
		w.emitError(fmt.Sprintf("resume %s", c.Name), err)
		return
	}
	w.emit(StatusEvent{Level: StatusSuccess, Message: fmt.Sprintf("Resumed %s", c.Name)})
	w.fetchSnapshot(ctx)
}

func (w *Worker) stopTorrents(ctx context.Context, c StopTorrentsCommand) {
	if len(c.IDs) == 0 {
		return
	}
	if err := w.client.StopTorrents(ctx, c.IDs); err != nil {
		w.emitError(fmt.Sprintf("pause %s", c.Name), err)
		return
	}
	w.emit(StatusEvent{Level: StatusSuccess, Message: fmt.Sprintf("Paused %s", c.Name)})
	w.fetchSnapshot(ctx)
}

func (w *Worker) reconfigure(cfg ConnectionConfig) {
	w.client.Reconfigure(cfg)
	w.logger.Info().Str("endpoint", cfg.Endpoint).Msg("connection reconfigured")
	w.emit(StatusEvent{Level: StatusInfo, Message: "Configuration reloaded"})
}
