/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPreferencesModalSeedsFromCache(t *testing.T) {
	cached := &DaemonPreferences{DownloadDir: "/cached"}
	mode, cmd := openPreferencesModal(cached)
	ready, ok := mode.View.(*preferencesReady)
	require.True(t, ok)
	assert.Equal(t, "/cached", ready.Prefs.DownloadDir)
	assert.IsType(t, FetchPreferencesCommand{}, cmd)
}

func TestOpenPreferencesModalWithoutCacheStartsLoading(t *testing.T) {
	mode, cmd := openPreferencesModal(nil)
	_, ok := mode.View.(*preferencesLoading)
	require.True(t, ok)
	assert.IsType(t, FetchPreferencesCommand{}, cmd)
}

func TestApplyPreferencesEventErrorOnLoadingBecomesError(t *testing.T) {
	view := applyPreferencesEvent(&preferencesLoading{}, PreferencesEvent{Err: errors.New("boom")})
	errView, ok := view.(*preferencesError)
	require.True(t, ok)
	assert.Contains(t, errView.Message, "boom")
}

func TestApplyPreferencesEventErrorOnReadySetsMessage(t *testing.T) {
	ready := &preferencesReady{Saving: true}
	view := applyPreferencesEvent(ready, PreferencesEvent{Err: errors.New("boom")})
	out, ok := view.(*preferencesReady)
	require.True(t, ok)
	assert.False(t, out.Saving)
	assert.Contains(t, out.Message, "boom")
}

func TestApplyPreferencesEventSuccessMessageDependsOnSaving(t *testing.T) {
	reloaded := applyPreferencesEvent(&preferencesReady{}, PreferencesEvent{Preferences: DaemonPreferences{}})
	assert.Equal(t, "Preferences reloaded", reloaded.(*preferencesReady).Message)

	saved := applyPreferencesEvent(&preferencesReady{Saving: true}, PreferencesEvent{Preferences: DaemonPreferences{}})
	assert.Equal(t, "Preferences saved", saved.(*preferencesReady).Message)
}

func TestHandleReadyKeyCursorClamps(t *testing.T) {
	v := &preferencesReady{Cursor: 0}
	handleReadyKey(v, keySpecial(tcell.KeyUp))
	assert.Equal(t, 0, v.Cursor)

	v.Cursor = len(PreferenceFields) - 1
	handleReadyKey(v, keyRune('j'))
	assert.Equal(t, len(PreferenceFields)-1, v.Cursor)
}

func TestHandleReadyKeyToggleField(t *testing.T) {
	v := &preferencesReady{Cursor: 1} // start_added_torrents
	require.Equal(t, "start_added_torrents", PreferenceFields[1].Name)
	before := v.Prefs.StartWhenAdded
	handleReadyKey(v, keyRune(' '))
	assert.NotEqual(t, before, v.Prefs.StartWhenAdded)
	assert.True(t, v.Dirty)
}

func TestHandleReadyKeyEncryptionCycle(t *testing.T) {
	cursor := -1
	for i, f := range PreferenceFields {
		if f.Kind == PreferenceEncryption {
			cursor = i
		}
	}
	require.GreaterOrEqual(t, cursor, 0)

	v := &preferencesReady{Cursor: cursor}
	handleReadyKey(v, keySpecial(tcell.KeyRight))
	assert.Equal(t, EncryptionAllow, v.Prefs.EncryptionMode)
	handleReadyKey(v, keySpecial(tcell.KeyLeft))
	assert.Equal(t, EncryptionPrefer, v.Prefs.EncryptionMode)
}

func TestHandleReadyKeyOpensEditorAndApplies(t *testing.T) {
	cursor := -1
	for i, f := range PreferenceFields {
		if f.Name == "speed_limit_up" {
			cursor = i
		}
	}
	require.GreaterOrEqual(t, cursor, 0)

	v := &preferencesReady{Cursor: cursor, Prefs: DaemonPreferences{SpeedLimitUp: 10}}
	handleReadyKey(v, keySpecial(tcell.KeyEnter))
	require.NotNil(t, v.Editing)
	assert.Equal(t, "10", v.Editing.Buffer)

	result := handleEditingKey(v, keyRune('5'))
	v = result.View.(*preferencesReady)
	result = handleEditingKey(v, keySpecial(tcell.KeyEnter))
	v = result.View.(*preferencesReady)
	assert.Nil(t, v.Editing)
	assert.EqualValues(t, 105, v.Prefs.SpeedLimitUp)
	assert.True(t, v.Dirty)
}

func TestHandleEditingKeyRejectsInvalidInput(t *testing.T) {
	cursor := -1
	for i, f := range PreferenceFields {
		if f.Name == "download_dir" {
			cursor = i
		}
	}
	v := &preferencesReady{Cursor: cursor, Editing: &editorState{Buffer: "   "}}
	result := handleEditingKey(v, keySpecial(tcell.KeyEnter))
	out := result.View.(*preferencesReady)
	require.NotNil(t, out.Editing)
	assert.NotEmpty(t, out.Editing.Error)
}

func TestHandleSaveGuardsAgainstNotDirtyOrAlreadySaving(t *testing.T) {
	v := &preferencesReady{}
	result := handleSave(v)
	assert.Nil(t, result.Command)
	assert.Equal(t, "No changes to save", v.Message)

	v.Dirty = true
	result = handleSave(v)
	require.NotNil(t, result.Command)
	assert.True(t, v.Saving)

	result = handleSave(v)
	assert.Equal(t, "Already saving", v.Message)
}

func TestHandleReloadGuardsAgainstDirty(t *testing.T) {
	v := &preferencesReady{Dirty: true}
	result := handleReload(v)
	assert.Nil(t, result.Command)
	assert.Equal(t, "Discard changes before reloading", v.Message)

	v.Dirty = false
	result = handleReload(v)
	require.NotNil(t, result.Command)
	_, isLoading := result.View.(*preferencesLoading)
	assert.True(t, isLoading)
}

func TestIsCloseKey(t *testing.T) {
	assert.True(t, isCloseKey(keySpecial(tcell.KeyEscape)))
	assert.True(t, isCloseKey(keyRune('q')))
	assert.False(t, isCloseKey(keyRune('x')))
}
