/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

var (
	styleDefault = tcell.StyleDefault
	styleBold    = tcell.StyleDefault.Bold(true)
	styleDim     = tcell.StyleDefault.Dim(true)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleYellow  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

func statusStyle(level StatusLevel) tcell.Style {
	switch level {
	case StatusSuccess:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case StatusWarning:
		return styleYellow
	case StatusError:
		return styleError
	default:
		return styleDefault
	}
}

// Draw renders the full screen for the current reducer state, grounded on
// original_source/src/tui.rs's render/render_header/render_list/
// render_detail/render_footer/render_toast functions, translated from
// ratatui's retained-widget model to tcell's direct cell drawing.
func Draw(screen tcell.Screen, a *App) {
	screen.Clear()
	width, height := screen.Size()
	if width <= 0 || height <= 0 {
		screen.Show()
		return
	}

	headerHeight := 4
	footerHeight := 1
	bodyTop := headerHeight
	bodyHeight := height - headerHeight - footerHeight
	if bodyHeight < 0 {
		bodyHeight = 0
	}

	drawHeader(screen, a, 0, 0, width, headerHeight)
	listHeight := bodyHeight * 6 / 10
	detailTop := bodyTop + listHeight
	drawList(screen, a, 0, bodyTop, width, listHeight)
	drawDetail(screen, a, 0, detailTop, width, bodyHeight-listHeight)
	drawFooter(screen, a, 0, height-footerHeight, width)
	drawToast(screen, a, width, height)

	switch mode := a.mode.(type) {
	case *promptMode:
		drawPromptModal(screen, mode, width, height)
	case *confirmMode:
		drawConfirmModal(screen, mode, width, height)
	case *filterMode:
		drawFilterModal(screen, mode, width, height)
	case *helpMode:
		drawHelpModal(screen, width, height)
	case *preferencesMode:
		drawPreferencesModal(screen, mode, width, height)
	}

	screen.Show()
}

func putStr(screen tcell.Screen, x, y int, style tcell.Style, s string) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func drawBox(screen tcell.Screen, x, y, w, h int, title string) {
	if w < 2 || h < 2 {
		return
	}
	for i := x; i < x+w; i++ {
		screen.SetContent(i, y, tcell.RuneHLine, nil, styleDefault)
		screen.SetContent(i, y+h-1, tcell.RuneHLine, nil, styleDefault)
	}
	for i := y; i < y+h; i++ {
		screen.SetContent(x, i, tcell.RuneVLine, nil, styleDefault)
		screen.SetContent(x+w-1, i, tcell.RuneVLine, nil, styleDefault)
	}
	screen.SetContent(x, y, tcell.RuneULCorner, nil, styleDefault)
	screen.SetContent(x+w-1, y, tcell.RuneURCorner, nil, styleDefault)
	screen.SetContent(x, y+h-1, tcell.RuneLLCorner, nil, styleDefault)
	screen.SetContent(x+w-1, y+h-1, tcell.RuneLRCorner, nil, styleDefault)
	if title != "" {
		putStr(screen, x+2, y, styleDefault, " "+title+" ")
	}
}

func centeredRect(percentX, percentY, width, height int) (int, int, int, int) {
	w := width * percentX / 100
	h := height * percentY / 100
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	x := (width - w) / 2
	y := (height - h) / 2
	return x, y, w, h
}

func drawHeader(screen tcell.Screen, a *App, x, y, w, h int) {
	drawBox(screen, x, y, w, h, "Session")
	line := 1
	putStr(screen, x+1, y+line, styleBold, "Transmission")
	line++
	if len(a.snapshot.Torrents) > 0 || a.snapshot.Version != "" {
		summary := fmt.Sprintf("DL %s  UL %s  | Active %d  Paused %d  Total %d  | Version %s",
			formatSpeed(a.snapshot.DownloadSpeed), formatSpeed(a.snapshot.UploadSpeed),
			a.snapshot.ActiveTorrents, a.snapshot.PausedTorrents, a.snapshot.TotalTorrents, a.snapshot.Version)
		putStr(screen, x+1, y+line, styleDefault, summary)
	} else {
		putStr(screen, x+1, y+line, styleDim, "Waiting for session stats…")
	}
	line++
	if a.status != nil {
		putStr(screen, x+1, y+line, statusStyle(a.status.Level), a.status.Text)
	}
}

func summaryLine(t TorrentSummary) string {
	return fmt.Sprintf("%-30.30s %-12s %6s  DL %-9s UL %-9s ETA %s",
		t.Name, t.Status, formatProgress(t.PercentDone), formatSpeed(t.RateDownload), formatSpeed(t.RateUpload), formatETA(t.ETA))
}

func drawList(screen tcell.Screen, a *App, x, y, w, h int) {
	drawBox(screen, x, y, w, h, "Torrents")
	if h <= 2 {
		return
	}
	if len(a.filteredIndices) == 0 {
		putStr(screen, x+1, y+1, styleDim, "No torrents loaded")
		return
	}
	for row, torrentIdx := range a.filteredIndices {
		if row >= h-2 {
			break
		}
		t := a.snapshot.Torrents[torrentIdx]
		style := styleDefault
		prefix := "  "
		if row == a.selectedIndex {
			style = styleYellow
			prefix = "> "
		}
		putStr(screen, x+1, y+1+row, style, prefix+summaryLine(t))
	}
}

func drawDetail(screen tcell.Screen, a *App, x, y, w, h int) {
	drawBox(screen, x, y, w, h, "Details")
	if h <= 2 {
		return
	}
	t := a.currentTorrent()
	if t == nil {
		putStr(screen, x+1, y+1, styleDim, "No torrent selected")
		return
	}
	lines := []string{
		t.Name,
		fmt.Sprintf("Status: %s", t.Status),
		fmt.Sprintf("Progress: %s  ETA %s", formatProgress(t.PercentDone), formatETA(t.ETA)),
		fmt.Sprintf("Size: %s (remaining %s)", formatBytes(t.SizeWhenDone), formatBytes(t.LeftUntilDone)),
		fmt.Sprintf("Rates: DL %s  UL %s", formatSpeed(t.RateDownload), formatSpeed(t.RateUpload)),
		fmt.Sprintf("Ratio: %.2f", t.UploadRatio),
		fmt.Sprintf("Peers: sending %d | receiving %d | connected %d", t.PeersSending, t.PeersReceiving, t.PeersConnected),
		fmt.Sprintf("Path: %s", t.DownloadDir),
	}
	for i, line := range lines {
		if i+1 >= h-1 {
			break
		}
		style := styleDefault
		if i == 0 {
			style = styleBold
		}
		putStr(screen, x+1, y+1+i, style, line)
	}
	if t.Error != "" {
		row := len(lines) + 1
		if row < h-1 {
			putStr(screen, x+1, y+1+row, styleError, "Error: "+t.Error)
		}
	}
}

func modeLabel(mode ModalMode) string {
	switch mode.(type) {
	case *normalMode:
		return "NORMAL"
	case *filterMode:
		return "FILTER"
	case *promptMode:
		return "PROMPT"
	case *confirmMode:
		return "CONFIRM"
	case *helpMode:
		return "HELP"
	case *preferencesMode:
		return "PREFERENCES"
	default:
		return ""
	}
}

func drawFooter(screen tcell.Screen, a *App, x, y, w int) {
	filterDisplay := "(no filter)"
	if fm, ok := a.mode.(*filterMode); ok {
		filterDisplay = "/" + fm.Buffer
	} else if a.filter != "" {
		filterDisplay = "/" + a.filter
	}
	putStr(screen, x, y, styleDefault, fmt.Sprintf("Mode %s | Filter %s", modeLabel(a.mode), filterDisplay))
	helpLabel := "Help [?]"
	putStr(screen, x+w-len(helpLabel)-1, y, styleDefault, helpLabel)
}

func drawToast(screen tcell.Screen, a *App, screenW, screenH int) {
	if !toastVisibleInMode(a.mode) || a.toast == nil {
		return
	}
	if screenW < 20 || screenH < 5 {
		return
	}
	padding := 2
	width := screenW - padding*2
	if width > 60 {
		width = 60
	}
	if width < 20 {
		width = 20
	}
	height := 3
	x := screenW - width - padding
	y := screenH - height - padding
	drawBox(screen, x, y, width, height, "Notice")
	text := a.toast.Text
	if len(text) > width-2 {
		text = text[:width-2]
	}
	putStr(screen, x+1, y+1, statusStyle(a.toast.Level), text)
}

func drawFilterModal(screen tcell.Screen, mode *filterMode, screenW, screenH int) {
	x, y, w, h := centeredRect(60, 20, screenW, screenH)
	drawBox(screen, x, y, w, h, "Filter")
	putStr(screen, x+1, y+1, styleDefault, "Type to filter, Enter to apply, Esc to cancel")
	putStr(screen, x+1, y+2, styleDefault, "/"+mode.Buffer)
}

func drawPromptModal(screen tcell.Screen, mode *promptMode, screenW, screenH int) {
	x, y, w, h := centeredRect(60, 30, screenW, screenH)
	drawBox(screen, x, y, w, h, mode.Title)
	putStr(screen, x+1, y+1, styleDefault, "Enter a magnet URL and press Enter (Esc to cancel)")
	putStr(screen, x+1, y+2, styleDefault, "> "+mode.Buffer)
}

func drawConfirmModal(screen tcell.Screen, mode *confirmMode, screenW, screenH int) {
	x, y, w, h := centeredRect(50, 30, screenW, screenH)
	drawBox(screen, x, y, w, h, mode.Title)
	putStr(screen, x+1, y+1, styleDefault, mode.Message)
	putStr(screen, x+1, y+2, styleYellow, "Press y to confirm, n or Esc to cancel")
}

func helpLines() []string {
	return []string{
		"j/k, ↓/↑        move selection",
		"Ctrl-d/Ctrl-u   move 5",
		"g/G             top/bottom",
		"r               resume selected",
		"p               pause selected",
		"d d             arm then confirm delete",
		"a               add magnet",
		"/               filter",
		"o               preferences",
		"R               refresh now",
		"Esc             clear filter / cancel",
		"q, Ctrl-c       quit",
		"?               toggle this help",
	}
}

func drawHelpModal(screen tcell.Screen, screenW, screenH int) {
	x, y, w, h := centeredRect(70, 70, screenW, screenH)
	drawBox(screen, x, y, w, h, "Key Bindings")
	for i, line := range helpLines() {
		if i+1 >= h-1 {
			break
		}
		putStr(screen, x+1, y+1+i, styleDefault, line)
	}
}

func drawPreferencesModal(screen tcell.Screen, mode *preferencesMode, screenW, screenH int) {
	x, y, w, h := centeredRect(70, 80, screenW, screenH)
	drawBox(screen, x, y, w, h, "Preferences")
	switch v := mode.View.(type) {
	case *preferencesLoading:
		putStr(screen, x+1, y+1, styleDim, "Loading preferences…")
	case *preferencesError:
		putStr(screen, x+1, y+1, styleError, "Error: "+v.Message)
		putStr(screen, x+1, y+2, styleDefault, "Press Esc or q to close")
	case *preferencesReady:
		drawPreferencesForm(screen, v, x, y, w, h)
	}
}

func drawPreferencesForm(screen tcell.Screen, v *preferencesReady, x, y, w, h int) {
	row := 1
	for i, field := range PreferenceFields {
		if row >= h-3 {
			break
		}
		style := styleDefault
		prefix := "  "
		if i == v.Cursor {
			style = styleYellow
			prefix = "> "
		}
		value := field.Display(v.Prefs)
		if v.Editing != nil && i == v.Cursor {
			value = v.Editing.Buffer + "_"
		}
		line := fmt.Sprintf("%s%-28s %s", prefix, field.Label, value)
		putStr(screen, x+1, y+row, style, line)
		row++
	}
	if v.Editing != nil && v.Editing.Error != "" {
		putStr(screen, x+1, y+h-3, styleError, v.Editing.Error)
	}
	footer := "Space/Enter toggle, ←/→ cycle, Enter edit, s save, r reload, Esc close"
	if len(footer) > w-2 {
		footer = footer[:w-2]
	}
	putStr(screen, x+1, y+h-2, styleDim, footer)
	if v.Message != "" {
		msg := v.Message
		if v.Saving {
			msg = "Saving: " + msg
		}
		if len(msg) > w-2 {
			msg = msg[:w-2]
		}
		putStr(screen, x+1, y+h-2-1, styleDefault, msg)
	}
}
