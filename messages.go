/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import "github.com/gdamore/tcell/v2"

// Event is produced by the Input Reader or the RPC Worker and consumed by
// the UI Reducer. It is a closed, tagged union: every concrete type below
// is the only thing that can flow over the event channel.
type Event interface{ isEvent() }

type InputEvent struct{ TermEvent tcell.Event }
type TickEvent struct{}
type SnapshotEvent struct{ Snapshot Snapshot }
type PreferencesEvent struct {
	Preferences DaemonPreferences
	Err         error
}
type StatusEvent struct {
	Level   StatusLevel
	Message string
}
type FocusTorrentEvent struct{ ID int64 }

func (InputEvent) isEvent()         {}
func (TickEvent) isEvent()          {}
func (SnapshotEvent) isEvent()      {}
func (PreferencesEvent) isEvent()   {}
func (StatusEvent) isEvent()        {}
func (FocusTorrentEvent) isEvent()  {}

// Command is emitted by the UI Reducer and consumed by the RPC Worker.
type Command interface{ isCommand() }

type FetchSnapshotCommand struct{}
type FetchPreferencesCommand struct{}
type UpdatePreferencesCommand struct{ Preferences DaemonPreferences }
type AddMagnetCommand struct{ URI string }
type RemoveTorrentsCommand struct {
	IDs             []int64
	Name            string
	DeleteLocalData bool
}
type StartTorrentsCommand struct {
	IDs  []int64
	Name string
}
type StopTorrentsCommand struct {
	IDs  []int64
	Name string
}
type ReconfigureCommand struct{ Config ConnectionConfig }

func (FetchSnapshotCommand) isCommand()     {}
func (FetchPreferencesCommand) isCommand()  {}
func (UpdatePreferencesCommand) isCommand() {}
func (AddMagnetCommand) isCommand()         {}
func (RemoveTorrentsCommand) isCommand()    {}
func (StartTorrentsCommand) isCommand()     {}
func (StopTorrentsCommand) isCommand()      {}
func (ReconfigureCommand) isCommand()       {}
