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

func TestLegacyMethodName(t *testing.T) {
	assert.Equal(t, "session-get", legacyMethodName("session_get"))
	assert.Equal(t, "torrent-remove", legacyMethodName("torrent_remove"))
	assert.Equal(t, "unknown_method", legacyMethodName("unknown_method"))
}

func TestLegacySessionFieldNameCamelCaseExceptions(t *testing.T) {
	assert.Equal(t, "seedRatioLimited", legacySessionFieldName("seed_ratio_limited"))
	assert.Equal(t, "seedRatioLimit", legacySessionFieldName("seed_ratio_limit"))
	assert.Equal(t, "download-dir", legacySessionFieldName("download_dir"))
	assert.Equal(t, "encryption", legacySessionFieldName("encryption"))
}

func TestLegacyTorrentFieldName(t *testing.T) {
	assert.Equal(t, "percentDone", legacyTorrentFieldName("percent_done"))
	assert.Equal(t, "errorString", legacyTorrentFieldName("error_string"))
	assert.Equal(t, "unchanged", legacyTorrentFieldName("unchanged"))
}

func TestTranslateArgumentsForLegacyTorrentGetFields(t *testing.T) {
	args := map[string]any{"fields": []string{"percent_done", "rate_download"}}
	out := translateArgumentsForLegacy("torrent_get", args)
	assert.Equal(t, []string{"percentDone", "rateDownload"}, out["fields"])
	// original must be untouched
	assert.Equal(t, []string{"percent_done", "rate_download"}, args["fields"])
}

func TestTranslateArgumentsForLegacySessionSetRenamesKeys(t *testing.T) {
	args := map[string]any{
		"seed_ratio_limited": true,
		"download_dir":       "/x",
		"encryption":         "preferred",
	}
	out := translateArgumentsForLegacy("session_set", args)
	assert.Equal(t, true, out["seedRatioLimited"])
	assert.Equal(t, "/x", out["download-dir"])
	assert.Equal(t, "preferred", out["encryption"])
	_, stillPresent := out["seed_ratio_limited"]
	assert.False(t, stillPresent)
}

func TestTranslateArgumentsForLegacyTorrentRemove(t *testing.T) {
	args := map[string]any{"ids": []int64{1, 2}, "delete_local_data": true}
	out := translateArgumentsForLegacy("torrent_remove", args)
	assert.Equal(t, true, out["delete-local-data"])
	_, stillPresent := out["delete_local_data"]
	assert.False(t, stillPresent)
}

func TestTranslateArgumentsForLegacyNilArgs(t *testing.T) {
	assert.Nil(t, translateArgumentsForLegacy("session_set", nil))
}

func TestIsMethodNotFoundMessage(t *testing.T) {
	assert.True(t, isMethodNotFoundMessage("Method Not Found"))
	assert.True(t, isMethodNotFoundMessage("method name not recognized"))
	assert.False(t, isMethodNotFoundMessage("invalid session-id"))
}

func TestWireAccessorsUseAliases(t *testing.T) {
	m := map[string]any{"percentDone": 0.5, "rateDownload": float64(1024)}
	assert.InDelta(t, 0.5, wireFloat(m, torrentFieldAliases["percent_done"], 0), 0.0001)
	assert.EqualValues(t, 1024, wireInt64(m, torrentFieldAliases["rate_download"], 0))
	assert.Equal(t, "fallback", wireString(m, torrentFieldAliases["name"], "fallback"))
}
