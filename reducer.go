/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
)

// App is the single-threaded UI Reducer of spec.md §2/§4.3: it owns every
// piece of mutable application state and is the only thing that ever
// mutates it. No other actor reads or writes these fields (§5).
type App struct {
	snapshot        Snapshot
	filter          string
	filteredIndices []int
	selectedIndex   int // -1 when nothing is selected
	selectedID      *int64
	pendingFocus    *int64

	mode ModalMode

	status *StatusMessage
	toast  *StatusMessage

	cachedPreferences *DaemonPreferences

	deleteArmed       bool
	deleteArmedID     int64
	deleteArmedName   string
	deleteArmedExpiry time.Time

	pasteActive bool
	pasteBuffer strings.Builder

	shouldQuit bool
	commands   chan<- Command

	now func() time.Time
}

// NewApp constructs a reducer that sends commands on the given channel;
// dropping commands (closing the channel) is how shutdown is propagated to
// the RPC worker, per spec.md §2/§5.
func NewApp(commands chan<- Command) *App {
	return &App{
		mode:          &normalMode{},
		selectedIndex: -1,
		commands:      commands,
		now:           time.Now,
	}
}

func (a *App) ShouldQuit() bool { return a.shouldQuit }

func (a *App) send(cmd Command) {
	if a.commands != nil {
		a.commands <- cmd
	}
}

// HandleEvent applies a single event to state, per the deterministic
// algorithm of spec.md §4.3. The caller redraws unconditionally afterward.
func (a *App) HandleEvent(ev Event) {
	switch e := ev.(type) {
	case TickEvent:
		a.expireTransients()
	case InputEvent:
		a.handleTerminalEvent(e.TermEvent)
	case SnapshotEvent:
		a.snapshot = e.Snapshot
		a.resolveSelection(true)
	case PreferencesEvent:
		a.applyPreferencesToModal(e)
	case StatusEvent:
		a.setStatus(e.Level, e.Message)
	case FocusTorrentEvent:
		id := e.ID
		a.pendingFocus = &id
	}
}

func (a *App) setStatus(level StatusLevel, text string) {
	msg := &StatusMessage{Text: text, Level: level, Expiry: a.now().Add(statusExpiry(level))}
	a.status = msg
	if level == StatusWarning || level == StatusError {
		a.toast = msg
	}
}

func (a *App) expireTransients() {
	now := a.now()
	if a.status != nil && now.After(a.status.Expiry) {
		a.status = nil
	}
	if a.toast != nil && now.After(a.toast.Expiry) {
		a.toast = nil
	}
	if a.deleteArmed && now.After(a.deleteArmedExpiry) {
		a.deleteArmed = false
	}
}

func (a *App) applyPreferencesToModal(e PreferencesEvent) {
	pm, ok := a.mode.(*preferencesMode)
	if !ok {
		// The modal was closed before the worker replied; the reducer
		// drops the stale event (§9 "last completed wins").
		return
	}
	pm.View = applyPreferencesEvent(pm.View, e)
}

// resolveSelection rebuilds the filtered view and resolves selection per
// the priority order of spec.md §4.3 step 3. usePendingFocus is true only
// when called after a Snapshot event — filter changes alone never consume
// pending_focus.
func (a *App) resolveSelection(usePendingFocus bool) {
	a.filteredIndices = buildFilteredIndices(a.snapshot, a.filter)

	if usePendingFocus && a.pendingFocus != nil {
		if idx := a.findFilteredIndexByID(*a.pendingFocus); idx >= 0 {
			a.selectedIndex = idx
			id := *a.pendingFocus
			a.selectedID = &id
			a.pendingFocus = nil
			return
		}
	}
	if usePendingFocus {
		a.pendingFocus = nil
	}

	if a.selectedID != nil {
		if idx := a.findFilteredIndexByID(*a.selectedID); idx >= 0 {
			a.selectedIndex = idx
			return
		}
	}
	if len(a.filteredIndices) > 0 {
		a.selectedIndex = 0
		id := a.snapshot.Torrents[a.filteredIndices[0]].ID
		a.selectedID = &id
		return
	}
	a.selectedIndex = -1
	a.selectedID = nil
}

func buildFilteredIndices(snap Snapshot, filter string) []int {
	lowerFilter := strings.ToLower(filter)
	indices := make([]int, 0, len(snap.Torrents))
	for i, t := range snap.Torrents {
		if lowerFilter == "" || strings.Contains(strings.ToLower(t.Name), lowerFilter) {
			indices = append(indices, i)
		}
	}
	return indices
}

func (a *App) findFilteredIndexByID(id int64) int {
	for i, torrentIdx := range a.filteredIndices {
		if a.snapshot.Torrents[torrentIdx].ID == id {
			return i
		}
	}
	return -1
}

func (a *App) currentTorrent() *TorrentSummary {
	if a.selectedIndex < 0 || a.selectedIndex >= len(a.filteredIndices) {
		return nil
	}
	return &a.snapshot.Torrents[a.filteredIndices[a.selectedIndex]]
}

func (a *App) moveSelection(delta int) {
	if len(a.filteredIndices) == 0 {
		return
	}
	next := a.selectedIndex + delta
	if next < 0 {
		next = 0
	}
	if next > len(a.filteredIndices)-1 {
		next = len(a.filteredIndices) - 1
	}
	a.selectedIndex = next
	id := a.snapshot.Torrents[a.filteredIndices[next]].ID
	a.selectedID = &id
}

func (a *App) gotoTop()    { a.moveSelection(-len(a.filteredIndices)) }
func (a *App) gotoBottom() { a.moveSelection(len(a.filteredIndices)) }

// --- terminal event dispatch ---

func (a *App) handleTerminalEvent(ev tcell.Event) {
	if pe, ok := ev.(*tcell.EventPaste); ok {
		if pe.Start() {
			a.pasteActive = true
			a.pasteBuffer.Reset()
		} else {
			a.pasteActive = false
			a.handlePaste(a.pasteBuffer.String())
		}
		return
	}

	ke, ok := ev.(*tcell.EventKey)
	if !ok {
		return
	}

	if a.pasteActive {
		if ke.Rune() != 0 {
			a.pasteBuffer.WriteRune(ke.Rune())
		}
		return
	}

	if ke.Key() == tcell.KeyCtrlC {
		a.shouldQuit = true
		return
	}

	switch mode := a.mode.(type) {
	case *normalMode:
		a.handleNormalKey(ke)
	case *filterMode:
		a.handleFilterKey(mode, ke)
	case *promptMode:
		a.handlePromptKey(mode, ke)
	case *confirmMode:
		a.handleConfirmKey(mode, ke)
	case *helpMode:
		a.handleHelpKey(ke)
	case *preferencesMode:
		a.handlePreferencesModeKey(mode, ke)
	}
}

func (a *App) handlePaste(text string) {
	if text == "" {
		return
	}
	switch mode := a.mode.(type) {
	case *normalMode:
		a.mode = &promptMode{Title: "Add magnet", Buffer: text}
	case *filterMode:
		mode.Buffer += text
	case *promptMode:
		mode.Buffer += text
	}
}

func (a *App) handleNormalKey(ev *tcell.EventKey) {
	if a.deleteArmed && ev.Rune() != 'd' {
		a.deleteArmed = false
	}

	switch {
	case ev.Rune() == 'q':
		a.shouldQuit = true
	case ev.Rune() == 'j':
		a.moveSelection(1)
	case ev.Rune() == 'k':
		a.moveSelection(-1)
	case ev.Key() == tcell.KeyCtrlD:
		a.moveSelection(5)
	case ev.Key() == tcell.KeyCtrlU:
		a.moveSelection(-5)
	case ev.Rune() == 'g':
		a.gotoTop()
	case ev.Rune() == 'G':
		a.gotoBottom()
	case ev.Rune() == 'r':
		a.resumeSelected()
	case ev.Rune() == 'R':
		a.send(FetchSnapshotCommand{})
	case ev.Rune() == 'p':
		a.pauseSelected()
	case ev.Rune() == 'a':
		a.mode = &promptMode{Title: "Add magnet"}
	case ev.Rune() == '/':
		a.mode = &filterMode{Buffer: a.filter}
	case ev.Rune() == 'o':
		mode, cmd := openPreferencesModal(a.cachedPreferences)
		a.mode = mode
		a.send(cmd)
	case ev.Rune() == '?':
		a.mode = &helpMode{}
	case ev.Rune() == 'd':
		a.handleDeleteKey()
	case ev.Key() == tcell.KeyEscape:
		if a.filter != "" {
			a.filter = ""
			a.resolveSelection(false)
		}
	}
}

func (a *App) resumeSelected() {
	t := a.currentTorrent()
	if t == nil {
		return
	}
	a.send(StartTorrentsCommand{IDs: []int64{t.ID}, Name: t.Name})
}

func (a *App) pauseSelected() {
	t := a.currentTorrent()
	if t == nil {
		return
	}
	a.send(StopTorrentsCommand{IDs: []int64{t.ID}, Name: t.Name})
}

func (a *App) handleDeleteKey() {
	t := a.currentTorrent()
	if t == nil {
		return
	}
	if a.deleteArmed && a.deleteArmedID == t.ID {
		a.deleteArmed = false
		a.mode = &confirmMode{
			Title:   "Remove torrent",
			Message: fmt.Sprintf("Remove %q?", t.Name),
			ID:      t.ID,
			Name:    t.Name,
		}
		return
	}
	a.deleteArmed = true
	a.deleteArmedID = t.ID
	a.deleteArmedName = t.Name
	a.deleteArmedExpiry = a.now().Add(2 * time.Second)
	a.setStatus(StatusInfo, fmt.Sprintf("Press d again to remove %q", t.Name))
}

func (a *App) handleFilterKey(mode *filterMode, ev *tcell.EventKey) {
	switch {
	case ev.Key() == tcell.KeyEnter:
		a.filter = strings.TrimSpace(mode.Buffer)
		a.mode = &normalMode{}
		a.resolveSelection(false)
	case ev.Key() == tcell.KeyEscape:
		a.mode = &normalMode{}
	case ev.Key() == tcell.KeyBackspace || ev.Key() == tcell.KeyBackspace2:
		if len(mode.Buffer) > 0 {
			mode.Buffer = mode.Buffer[:len(mode.Buffer)-1]
		}
	case ev.Rune() != 0 && ev.Rune() >= ' ':
		mode.Buffer += string(ev.Rune())
	}
}

func (a *App) handlePromptKey(mode *promptMode, ev *tcell.EventKey) {
	switch {
	case ev.Key() == tcell.KeyEnter:
		value := strings.TrimSpace(mode.Buffer)
		a.mode = &normalMode{}
		if value == "" {
			return
		}
		a.send(AddMagnetCommand{URI: value})
		a.setStatus(StatusInfo, "Adding magnet…")
	case ev.Key() == tcell.KeyEscape:
		a.mode = &normalMode{}
	case ev.Key() == tcell.KeyBackspace || ev.Key() == tcell.KeyBackspace2:
		if len(mode.Buffer) > 0 {
			mode.Buffer = mode.Buffer[:len(mode.Buffer)-1]
		}
	case ev.Rune() != 0 && ev.Rune() >= ' ':
		mode.Buffer += string(ev.Rune())
	}
}

func (a *App) handleConfirmKey(mode *confirmMode, ev *tcell.EventKey) {
	switch {
	case ev.Rune() == 'y' || ev.Key() == tcell.KeyEnter:
		a.mode = &normalMode{}
		a.setStatus(StatusInfo, fmt.Sprintf("Removing %s…", mode.Name))
		a.send(RemoveTorrentsCommand{IDs: []int64{mode.ID}, Name: mode.Name, DeleteLocalData: mode.DeleteLocalData})
	case ev.Rune() == 'n' || ev.Key() == tcell.KeyEscape:
		a.mode = &normalMode{}
	}
}

func (a *App) handleHelpKey(ev *tcell.EventKey) {
	if ev.Rune() == '?' || ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyEnter || ev.Rune() == 'q' {
		a.mode = &normalMode{}
	}
}

func (a *App) handlePreferencesModeKey(pm *preferencesMode, ev *tcell.EventKey) {
	result := handlePreferencesKey(pm.View, ev)
	if result.Close {
		a.mode = &normalMode{}
		return
	}
	pm.View = result.View
	if result.Command != nil {
		a.send(result.Command)
	}
	if ready, ok := pm.View.(*preferencesReady); ok {
		a.cachedPreferences = &ready.Prefs
	}
}
