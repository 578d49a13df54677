/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, chan Command) {
	t.Helper()
	commands := make(chan Command, 16)
	app := NewApp(commands)
	return app, commands
}

func sampleSnapshot() Snapshot {
	return Snapshot{
		Torrents: []TorrentSummary{
			{ID: 1, Name: "Alpha"},
			{ID: 2, Name: "Beta"},
			{ID: 3, Name: "Gamma"},
		},
	}
}

func keyRune(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func keySpecial(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func TestResolveSelectionPendingFocusPriority(t *testing.T) {
	app, _ := newTestApp(t)
	id := int64(2)
	app.pendingFocus = &id
	app.HandleEvent(SnapshotEvent{Snapshot: sampleSnapshot()})

	require.NotNil(t, app.selectedID)
	assert.EqualValues(t, 2, *app.selectedID)
	assert.Nil(t, app.pendingFocus)
}

func TestResolveSelectionKeepsPreviousIDWhenStillPresent(t *testing.T) {
	app, _ := newTestApp(t)
	app.HandleEvent(SnapshotEvent{Snapshot: sampleSnapshot()})
	assert.EqualValues(t, 1, *app.selectedID)

	app.moveSelection(1)
	assert.EqualValues(t, 2, *app.selectedID)

	app.HandleEvent(SnapshotEvent{Snapshot: sampleSnapshot()})
	assert.EqualValues(t, 2, *app.selectedID)
}

func TestResolveSelectionFallsBackToZeroWhenSelectionRemoved(t *testing.T) {
	app, _ := newTestApp(t)
	app.HandleEvent(SnapshotEvent{Snapshot: sampleSnapshot()})
	app.moveSelection(1)
	assert.EqualValues(t, 2, *app.selectedID)

	reduced := Snapshot{Torrents: []TorrentSummary{{ID: 1, Name: "Alpha"}, {ID: 3, Name: "Gamma"}}}
	app.HandleEvent(SnapshotEvent{Snapshot: reduced})
	assert.EqualValues(t, 1, *app.selectedID)
}

func TestResolveSelectionNoneWhenEmpty(t *testing.T) {
	app, _ := newTestApp(t)
	app.HandleEvent(SnapshotEvent{Snapshot: Snapshot{}})
	assert.Equal(t, -1, app.selectedIndex)
	assert.Nil(t, app.selectedID)
}

func TestFilterChangeDoesNotConsumePendingFocus(t *testing.T) {
	app, _ := newTestApp(t)
	app.HandleEvent(SnapshotEvent{Snapshot: sampleSnapshot()})
	id := int64(3)
	app.pendingFocus = &id

	app.filter = "beta"
	app.resolveSelection(false)
	assert.NotNil(t, app.pendingFocus)
	assert.EqualValues(t, 2, *app.selectedID)
}

func TestHandleDeleteKeyArmsThenConfirms(t *testing.T) {
	app, _ := newTestApp(t)
	app.HandleEvent(SnapshotEvent{Snapshot: sampleSnapshot()})

	app.handleNormalKey(keyRune('d'))
	assert.True(t, app.deleteArmed)
	_, isNormal := app.mode.(*normalMode)
	assert.True(t, isNormal)

	app.handleNormalKey(keyRune('d'))
	assert.False(t, app.deleteArmed)
	confirm, ok := app.mode.(*confirmMode)
	require.True(t, ok)
	assert.EqualValues(t, 1, confirm.ID)
}

func TestHandleDeleteKeyDisarmsOnOtherKey(t *testing.T) {
	app, _ := newTestApp(t)
	app.HandleEvent(SnapshotEvent{Snapshot: sampleSnapshot()})

	app.handleNormalKey(keyRune('d'))
	assert.True(t, app.deleteArmed)

	app.handleNormalKey(keyRune('j'))
	assert.False(t, app.deleteArmed)
}

func TestDeleteArmExpiresOnTick(t *testing.T) {
	app, _ := newTestApp(t)
	app.HandleEvent(SnapshotEvent{Snapshot: sampleSnapshot()})
	app.handleNormalKey(keyRune('d'))
	require.True(t, app.deleteArmed)

	base := app.deleteArmedExpiry.Add(time.Second)
	app.now = func() time.Time { return base }
	app.HandleEvent(TickEvent{})
	assert.False(t, app.deleteArmed)
}

func TestStatusAndToastExpiry(t *testing.T) {
	app, _ := newTestApp(t)
	now := time.Now()
	app.now = func() time.Time { return now }
	app.setStatus(StatusError, "boom")
	require.NotNil(t, app.status)
	require.NotNil(t, app.toast)

	app.now = func() time.Time { return now.Add(9 * time.Second) }
	app.HandleEvent(TickEvent{})
	assert.Nil(t, app.status)
	assert.Nil(t, app.toast)
}

func TestFilterApplyAndCancel(t *testing.T) {
	app, _ := newTestApp(t)
	app.HandleEvent(SnapshotEvent{Snapshot: sampleSnapshot()})
	app.handleNormalKey(keyRune('/'))
	fm, ok := app.mode.(*filterMode)
	require.True(t, ok)

	app.handleFilterKey(fm, keyRune('g'))
	app.handleFilterKey(fm, keyRune('a'))
	app.handleFilterKey(fm, keySpecial(tcell.KeyEnter))

	_, isNormal := app.mode.(*normalMode)
	assert.True(t, isNormal)
	assert.Equal(t, "ga", app.filter)
	assert.EqualValues(t, 3, *app.selectedID)

	app.handleNormalKey(keySpecial(tcell.KeyEscape))
	assert.Equal(t, "", app.filter)
}

func TestHandlePasteInNormalModeOpensPrompt(t *testing.T) {
	app, _ := newTestApp(t)
	app.handlePaste("magnet:?xt=urn:btih:dummy")
	pm, ok := app.mode.(*promptMode)
	require.True(t, ok)
	assert.Equal(t, "magnet:?xt=urn:btih:dummy", pm.Buffer)
}

func TestResumeAndPauseSendCommands(t *testing.T) {
	app, commands := newTestApp(t)
	app.HandleEvent(SnapshotEvent{Snapshot: sampleSnapshot()})

	app.resumeSelected()
	cmd := <-commands
	start, ok := cmd.(StartTorrentsCommand)
	require.True(t, ok)
	assert.Equal(t, []int64{1}, start.IDs)

	app.pauseSelected()
	cmd = <-commands
	stop, ok := cmd.(StopTorrentsCommand)
	require.True(t, ok)
	assert.Equal(t, []int64{1}, stop.IDs)
}
