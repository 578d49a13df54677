/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// tickInterval is the cadence at which the Input Reader emits a TickEvent
// so the reducer can expire statuses, toasts and the delete-arm window
// even when the terminal is otherwise idle.
const tickInterval = 250 * time.Millisecond

// RunInputReader is the Input Reader actor of spec.md §2/§5: it owns the
// tcell screen's event loop and is the only goroutine that calls
// PollEvent. It forwards every terminal event verbatim and injects a
// synthetic TickEvent on a fixed cadence. It returns when the screen is
// finalized (PollEvent returns nil) or done is closed.
func RunInputReader(screen tcell.Screen, events chan<- Event, done <-chan struct{}) {
	termEvents := make(chan tcell.Event)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(termEvents)
				return
			}
			termEvents <- ev
		}
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-termEvents:
			if !ok {
				return
			}
			events <- InputEvent{TermEvent: ev}
		case <-ticker.C:
			events <- TickEvent{}
		}
	}
}
