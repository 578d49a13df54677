/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTorrentStatusName(t *testing.T) {
	cases := []struct {
		code int64
		want string
	}{
		{0, "stopped"},
		{4, "downloading"},
		{6, "seeding"},
		{99, "status-99"},
	}
	for _, tt := range cases {
		assert.Equal(t, tt.want, torrentStatusName(tt.code))
	}
}

func TestEtaFromWire(t *testing.T) {
	assert.Nil(t, etaFromWire(-1))
	assert.Nil(t, etaFromWire(-2))
	got := etaFromWire(42)
	if assert.NotNil(t, got) {
		assert.EqualValues(t, 42, *got)
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, " 0.0 B", formatBytes(0))
	assert.Equal(t, " 1.0 KiB", formatBytes(1024))
	assert.Equal(t, " 1.0 MiB", formatBytes(1024*1024))
}

func TestFormatSpeed(t *testing.T) {
	assert.Equal(t, " 0.0B/s", formatSpeed(0))
	assert.Equal(t, " 1.0KiB/s", formatSpeed(1024))
}

func TestFormatProgress(t *testing.T) {
	assert.Equal(t, " 50.0%", formatProgress(0.5))
	assert.Equal(t, "100.0%", formatProgress(1))
}

func TestFormatETA(t *testing.T) {
	assert.Equal(t, "∞", formatETA(nil))
	unknown := int64(-5)
	assert.Equal(t, "∞", formatETA(&unknown))

	seconds := int64(45)
	assert.Equal(t, "45s", formatETA(&seconds))

	minutes := int64(125)
	assert.Equal(t, "2m", formatETA(&minutes))

	hours := int64(3*3600 + 10*60)
	assert.Equal(t, "3h10m", formatETA(&hours))

	days := int64(2*86400 + 5*3600)
	assert.Equal(t, "2d5h", formatETA(&days))
}
