/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"fmt"
	"time"
)

// Snapshot is the atomic triple (session stats + session version + torrent
// list) produced by one logical fetch. A successful fetch replaces the
// reducer's prior snapshot wholesale.
type Snapshot struct {
	Version         string
	DownloadSpeed   int64
	UploadSpeed     int64
	ActiveTorrents  int64
	PausedTorrents  int64
	TotalTorrents   int64
	Torrents        []TorrentSummary
}

// TorrentSummary is a value type copied into selection-dependent UI state
// on demand; it is never mutated in place once part of a Snapshot.
type TorrentSummary struct {
	ID              int64
	Name            string
	Status          string
	PercentDone     float64
	RateDownload    int64
	RateUpload      int64
	ETA             *int64 // nil iff the wire value was negative
	UploadRatio     float64
	SizeWhenDone    int64
	LeftUntilDone   int64
	DownloadDir     string
	PeersConnected  int64
	PeersSending    int64
	PeersReceiving  int64
	Error           string
	Peers           []PeerSummary
}

// PeerSummary is a value type embedded inside TorrentSummary.
type PeerSummary struct {
	Address   string
	Client    string
	Progress  float64
	RateDown  int64
	RateUp    int64
}

// torrentStatusName maps the daemon's integer status code to its canonical
// string, per the wire contract: 0 stopped, 1 check-wait, 2 checking,
// 3 download-wait, 4 downloading, 5 seed-wait, 6 seeding, else status-<n>.
func torrentStatusName(code int64) string {
	switch code {
	case 0:
		return "stopped"
	case 1:
		return "check-wait"
	case 2:
		return "checking"
	case 3:
		return "download-wait"
	case 4:
		return "downloading"
	case 5:
		return "seed-wait"
	case 6:
		return "seeding"
	default:
		return fmt.Sprintf("status-%d", code)
	}
}

// etaFromWire converts a wire ETA value to the Go representation: a
// negative wire value means "unknown", represented as a nil pointer.
func etaFromWire(raw int64) *int64 {
	if raw < 0 {
		return nil
	}
	v := raw
	return &v
}

var byteUnits = [...]string{"B", "KiB", "MiB", "GiB", "TiB"}

// formatBytes renders a byte count using binary units, matching the
// original client's fixed one-decimal layout.
func formatBytes(value int64) string {
	magnitude := float64(value)
	if magnitude < 0 {
		magnitude = 0
	}
	unit := 0
	for magnitude >= 1024 && unit < len(byteUnits)-1 {
		magnitude /= 1024
		unit++
	}
	return fmt.Sprintf("%4.1f %s", magnitude, byteUnits[unit])
}

// formatSpeed renders a rate in units-per-second; identical unit ladder to
// formatBytes but without the separating space, matching a rate column's
// tighter layout.
func formatSpeed(value int64) string {
	magnitude := float64(value)
	if magnitude < 0 {
		magnitude = 0
	}
	unit := 0
	for magnitude >= 1024 && unit < len(byteUnits)-1 {
		magnitude /= 1024
		unit++
	}
	return fmt.Sprintf("%4.1f%s/s", magnitude, byteUnits[unit])
}

// formatProgress renders a fraction-done value in [0,1] as a percentage.
func formatProgress(value float64) string {
	return fmt.Sprintf("%5.1f%%", value*100)
}

// formatETA renders an optional ETA as a bucketed duration, or the
// infinity symbol when unknown.
func formatETA(seconds *int64) string {
	if seconds == nil || *seconds < 0 {
		return "∞"
	}
	d := time.Duration(*seconds) * time.Second
	days := int64(d / (24 * time.Hour))
	hours := int64((d % (24 * time.Hour)) / time.Hour)
	minutes := int64((d % time.Hour) / time.Minute)
	secs := int64((d % time.Minute) / time.Second)
	switch {
	case days > 0:
		return fmt.Sprintf("%dd%dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
