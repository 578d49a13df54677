/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import "github.com/gdamore/tcell/v2"

// PreferencesView is the three-view sub-state machine of SPEC_FULL.md
// §4.4: Loading, Error, or a Ready form.
type PreferencesView interface{ isPreferencesView() }

type preferencesLoading struct{}
type preferencesError struct{ Message string }

// preferencesReady holds the editable form. Editing is nil unless an
// editor field's inline text box is currently open.
type preferencesReady struct {
	Prefs   DaemonPreferences
	Cursor  int
	Editing *editorState
	Dirty   bool
	Saving  bool
	Message string
}

type editorState struct {
	Buffer string
	Error  string
}

func (*preferencesLoading) isPreferencesView() {}
func (*preferencesError) isPreferencesView()   {}
func (*preferencesReady) isPreferencesView()   {}

// openPreferencesModal builds the initial modal state per spec.md §4.4:
// the cached preferences (if any) seed a Ready view immediately, and a
// background fetch is always issued regardless.
func openPreferencesModal(cached *DaemonPreferences) (*preferencesMode, Command) {
	if cached != nil {
		prefs := *cached
		return &preferencesMode{View: &preferencesReady{Prefs: prefs}}, FetchPreferencesCommand{}
	}
	return &preferencesMode{View: &preferencesLoading{}}, FetchPreferencesCommand{}
}

// applyPreferencesEvent folds a worker Preferences event into the current
// view, per spec.md §4.4: a successful fetch always replaces the form and
// clears dirty/saving/editing; the message names whether it was a reload
// or a post-save refresh.
func applyPreferencesEvent(view PreferencesView, ev PreferencesEvent) PreferencesView {
	if ev.Err != nil {
		if ready, ok := view.(*preferencesReady); ok {
			ready.Saving = false
			ready.Message = "Error: " + ev.Err.Error()
			return ready
		}
		return &preferencesError{Message: ev.Err.Error()}
	}

	cursor := 0
	wasSaving := false
	if ready, ok := view.(*preferencesReady); ok {
		cursor = ready.Cursor
		wasSaving = ready.Saving
	}
	message := "Preferences reloaded"
	if wasSaving {
		message = "Preferences saved"
	}
	return &preferencesReady{Prefs: ev.Preferences, Cursor: cursor, Message: message}
}

// preferencesKeyResult reports the effect of a key handled by the
// preferences sub-machine: at most one of Command/Close is meaningful.
type preferencesKeyResult struct {
	View    PreferencesView
	Command Command
	Close   bool
}

// handlePreferencesKey implements every key binding of spec.md §4.4 for a
// Ready form; Loading and Error views only respond to the close keys of
// isCloseKey (Esc, Enter, q, ?) and ignore everything else, since there is
// no form to act on.
func handlePreferencesKey(view PreferencesView, ev *tcell.EventKey) preferencesKeyResult {
	switch v := view.(type) {
	case *preferencesLoading:
		if isCloseKey(ev) {
			return preferencesKeyResult{Close: true}
		}
		return preferencesKeyResult{View: v}
	case *preferencesError:
		if isCloseKey(ev) {
			return preferencesKeyResult{Close: true}
		}
		return preferencesKeyResult{View: v}
	case *preferencesReady:
		return handleReadyKey(v, ev)
	default:
		return preferencesKeyResult{View: view}
	}
}

func isCloseKey(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyEnter || ev.Rune() == 'q' || ev.Rune() == '?'
}

func handleReadyKey(v *preferencesReady, ev *tcell.EventKey) preferencesKeyResult {
	if v.Editing != nil {
		return handleEditingKey(v, ev)
	}

	switch {
	case ev.Key() == tcell.KeyEscape || ev.Rune() == 'q':
		return preferencesKeyResult{Close: true}
	case ev.Rune() == 'j' || ev.Key() == tcell.KeyDown:
		if v.Cursor < len(PreferenceFields)-1 {
			v.Cursor++
		}
		return preferencesKeyResult{View: v}
	case ev.Rune() == 'k' || ev.Key() == tcell.KeyUp:
		if v.Cursor > 0 {
			v.Cursor--
		}
		return preferencesKeyResult{View: v}
	case ev.Rune() == 's':
		return handleSave(v)
	case ev.Rune() == 'r' || ev.Rune() == 'R':
		return handleReload(v)
	}

	field := PreferenceFields[v.Cursor]
	switch field.Kind {
	case PreferenceToggle:
		if ev.Rune() == ' ' || ev.Key() == tcell.KeyEnter {
			field.Toggle(&v.Prefs)
			v.Dirty = true
		}
	case PreferenceEncryption:
		switch {
		case ev.Key() == tcell.KeyRight, ev.Key() == tcell.KeyEnter:
			v.Prefs.EncryptionMode = nextEncryptionMode(v.Prefs.EncryptionMode)
			v.Dirty = true
		case ev.Key() == tcell.KeyLeft:
			// cycle backwards: two forward steps == one backward step
			for i := 0; i < 2; i++ {
				v.Prefs.EncryptionMode = nextEncryptionMode(v.Prefs.EncryptionMode)
			}
			v.Dirty = true
		}
	case PreferenceEditor:
		if ev.Key() == tcell.KeyEnter {
			v.Editing = &editorState{Buffer: field.InitialText(v.Prefs)}
		}
	}
	return preferencesKeyResult{View: v}
}

func handleEditingKey(v *preferencesReady, ev *tcell.EventKey) preferencesKeyResult {
	editing := v.Editing
	switch {
	case ev.Key() == tcell.KeyEscape:
		v.Editing = nil
	case ev.Key() == tcell.KeyEnter:
		field := PreferenceFields[v.Cursor]
		if err := field.Apply(&v.Prefs, editing.Buffer); err != nil {
			editing.Error = err.Error()
		} else {
			v.Editing = nil
			v.Dirty = true
		}
	case ev.Key() == tcell.KeyBackspace || ev.Key() == tcell.KeyBackspace2:
		if len(editing.Buffer) > 0 {
			editing.Buffer = editing.Buffer[:len(editing.Buffer)-1]
		}
	case ev.Rune() != 0 && ev.Rune() >= ' ':
		editing.Buffer += string(ev.Rune())
	}
	return preferencesKeyResult{View: v}
}

func handleSave(v *preferencesReady) preferencesKeyResult {
	if v.Saving {
		v.Message = "Already saving"
		return preferencesKeyResult{View: v}
	}
	if !v.Dirty {
		v.Message = "No changes to save"
		return preferencesKeyResult{View: v}
	}
	v.Saving = true
	v.Message = "Saving preferences…"
	return preferencesKeyResult{View: v, Command: UpdatePreferencesCommand{Preferences: v.Prefs}}
}

func handleReload(v *preferencesReady) preferencesKeyResult {
	if v.Dirty {
		v.Message = "Discard changes before reloading"
		return preferencesKeyResult{View: v}
	}
	return preferencesKeyResult{View: &preferencesLoading{}, Command: FetchPreferencesCommand{}}
}
