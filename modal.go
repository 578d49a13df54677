/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

// ModalMode is the UI's tagged modal state: at most one non-Normal mode is
// active at a time, and each variant carries only the buffers relevant to
// it (spec.md §9 "Tagged modal state") — there is no way to read a filter
// buffer while in Confirm mode, since confirmMode has no such field.
type ModalMode interface{ isModalMode() }

type normalMode struct{}

type filterMode struct{ Buffer string }

type promptMode struct {
	Title  string
	Buffer string
}

type confirmMode struct {
	Title          string
	Message        string
	ID             int64
	Name           string
	DeleteLocalData bool
}

type helpMode struct{}

// preferencesMode wraps the preferences sub-state-machine view described
// in SPEC_FULL.md §4.4; see preferences_form.go.
type preferencesMode struct {
	View PreferencesView
}

func (*normalMode) isModalMode()      {}
func (*filterMode) isModalMode()      {}
func (*promptMode) isModalMode()      {}
func (*confirmMode) isModalMode()     {}
func (*helpMode) isModalMode()        {}
func (*preferencesMode) isModalMode() {}
