/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T) (*Worker, chan Event) {
	t.Helper()
	events := make(chan Event, 16)
	commands := make(chan Command, 1)
	w := NewWorker(WorkerConfig{
		Client:   nil,
		Events:   events,
		Commands: commands,
		Logger:   zerolog.Nop(),
	})
	return w, events
}

func TestDescribeOutcomeFallsBackToGenericName(t *testing.T) {
	assert.Equal(t, "Example", describeOutcome(AddMagnetOutcome{Name: "Example"}))
	assert.Equal(t, "torrent", describeOutcome(AddMagnetOutcome{}))
}

func TestAddMagnetEmptyURIEmitsOnlyInfoStatus(t *testing.T) {
	w, events := newTestWorker(t)
	w.addMagnet(context.Background(), "   ")

	ev := <-events
	status, ok := ev.(StatusEvent)
	require.True(t, ok)
	assert.Equal(t, StatusInfo, status.Level)
	select {
	case <-events:
		t.Fatal("expected no further events for an empty add-magnet request")
	default:
	}
}

func newTestWorkerWithClient(t *testing.T, client *Client) (*Worker, chan Event) {
	t.Helper()
	events := make(chan Event, 16)
	commands := make(chan Command, 1)
	w := NewWorker(WorkerConfig{
		Client:   client,
		Events:   events,
		Commands: commands,
		Logger:   zerolog.Nop(),
	})
	return w, events
}

func TestUpdatePreferencesEmitsSuccessStatusOnSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": body["id"], "result": map[string]any{}})
	}))
	defer server.Close()

	client := NewClient(ConnectionConfig{Endpoint: server.URL}, zerolog.Nop())
	w, events := newTestWorkerWithClient(t, client)

	w.updatePreferences(context.Background(), DaemonPreferences{})

	prefsEvent, ok := (<-events).(PreferencesEvent)
	require.True(t, ok)
	assert.NoError(t, prefsEvent.Err)

	statusEvent, ok := (<-events).(StatusEvent)
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, statusEvent.Level)
	assert.Equal(t, "Preferences saved", statusEvent.Message)
}

func TestUpdatePreferencesEmitsOnlyErrorOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(ConnectionConfig{Endpoint: server.URL}, zerolog.Nop())
	w, events := newTestWorkerWithClient(t, client)

	w.updatePreferences(context.Background(), DaemonPreferences{})

	prefsEvent, ok := (<-events).(PreferencesEvent)
	require.True(t, ok)
	assert.Error(t, prefsEvent.Err)

	select {
	case ev := <-events:
		t.Fatalf("expected no further events on update-preferences failure, got %#v", ev)
	default:
	}
}

func TestAddMagnetDuplicateWording(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      body["id"],
			"result":  map[string]any{"torrent-duplicate": map[string]any{"id": float64(4), "name": "foo"}},
		})
	}))
	defer server.Close()

	client := NewClient(ConnectionConfig{Endpoint: server.URL}, zerolog.Nop())
	w, events := newTestWorkerWithClient(t, client)

	w.addMagnet(context.Background(), "magnet:?xt=urn:btih:dummy")

	status, ok := (<-events).(StatusEvent)
	require.True(t, ok)
	assert.Equal(t, StatusWarning, status.Level)
	assert.Equal(t, "Magnet already present (foo)", status.Message)
}

func TestRemoveStartStopEmptyIDsAreNoOps(t *testing.T) {
	w, events := newTestWorker(t)
	w.removeTorrents(context.Background(), RemoveTorrentsCommand{})
	w.startTorrents(context.Background(), StartTorrentsCommand{})
	w.stopTorrents(context.Background(), StopTorrentsCommand{})

	select {
	case ev := <-events:
		t.Fatalf("expected no events for empty ID lists, got %#v", ev)
	default:
	}
}
