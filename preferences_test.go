/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptionModeRPCValueDialects(t *testing.T) {
	assert.Equal(t, "preferred", EncryptionPrefer.rpcValue(false))
	assert.Equal(t, "preferred", EncryptionPrefer.rpcValue(true))
	assert.Equal(t, "allowed", EncryptionAllow.rpcValue(false))
	assert.Equal(t, "tolerated", EncryptionAllow.rpcValue(true))
	assert.Equal(t, "required", EncryptionRequire.rpcValue(false))
	assert.Equal(t, "required", EncryptionRequire.rpcValue(true))
}

func TestEncryptionModeFromRPCAliases(t *testing.T) {
	assert.Equal(t, EncryptionAllow, encryptionModeFromRPC("allowed"))
	assert.Equal(t, EncryptionAllow, encryptionModeFromRPC("tolerated"))
	assert.Equal(t, EncryptionRequire, encryptionModeFromRPC("required"))
	assert.Equal(t, EncryptionPrefer, encryptionModeFromRPC("preferred"))
	assert.Equal(t, EncryptionPrefer, encryptionModeFromRPC("anything-else"))
}

func TestNextEncryptionModeCycles(t *testing.T) {
	assert.Equal(t, EncryptionAllow, nextEncryptionMode(EncryptionPrefer))
	assert.Equal(t, EncryptionRequire, nextEncryptionMode(EncryptionAllow))
	assert.Equal(t, EncryptionPrefer, nextEncryptionMode(EncryptionRequire))
}

func TestPreferencesFromWireAppliesDefaultsAndAliases(t *testing.T) {
	prefs := preferencesFromWire(map[string]any{})
	assert.True(t, prefs.StartWhenAdded)
	assert.EqualValues(t, 50, prefs.PeerLimitPerTorrent)
	assert.Equal(t, EncryptionPrefer, prefs.EncryptionMode)

	legacy := preferencesFromWire(map[string]any{
		"download-dir":            "/downloads",
		"speed-limit-up-enabled":  true,
		"speed-limit-up":          float64(500),
		"seedRatioLimited":        true,
		"seedRatioLimit":          float64(3.5),
		"encryption":              "tolerated",
		"blocklist-url":           "  http://list.example/blocklist  ",
	})
	assert.Equal(t, "/downloads", legacy.DownloadDir)
	assert.True(t, legacy.SpeedLimitUpEnabled)
	assert.EqualValues(t, 500, legacy.SpeedLimitUp)
	assert.True(t, legacy.SeedRatioLimited)
	assert.InDelta(t, 3.5, legacy.SeedRatioLimit, 0.0001)
	assert.Equal(t, EncryptionAllow, legacy.EncryptionMode)
	assert.Equal(t, "http://list.example/blocklist", legacy.BlocklistURL)
}

func TestFieldUint32ClampsNegativeToZero(t *testing.T) {
	assert.EqualValues(t, 0, fieldUint32(map[string]any{"peer_limit_global": float64(-5)}, "peer_limit_global", 200))
	assert.EqualValues(t, 200, fieldUint32(map[string]any{}, "peer_limit_global", 200))
	assert.EqualValues(t, 42, fieldUint32(map[string]any{"peer_limit_global": float64(42)}, "peer_limit_global", 200))
}

func TestToRPCArgumentsEncryptionDialect(t *testing.T) {
	p := DaemonPreferences{EncryptionMode: EncryptionAllow}
	canonical := p.toRPCArguments(false)
	assert.Equal(t, "allowed", canonical["encryption"])

	legacy := p.toRPCArguments(true)
	assert.Equal(t, "tolerated", legacy["encryption"])
}

func TestApplyDownloadDirRejectsEmpty(t *testing.T) {
	var p DaemonPreferences
	require.Error(t, applyDownloadDir(&p, "   "))
	require.NoError(t, applyDownloadDir(&p, "  /data/torrents  "))
	assert.Equal(t, "/data/torrents", p.DownloadDir)
}

func TestApplyNonNegativeUint32(t *testing.T) {
	var v uint32
	assert.Error(t, applyNonNegativeUint32(&v, "-1"))
	assert.Error(t, applyNonNegativeUint32(&v, "not-a-number"))
	require.NoError(t, applyNonNegativeUint32(&v, "0"))
	assert.EqualValues(t, 0, v)
	require.NoError(t, applyNonNegativeUint32(&v, "200"))
	assert.EqualValues(t, 200, v)
}

func TestApplyPositiveUint32(t *testing.T) {
	var v uint32
	assert.Error(t, applyPositiveUint32(&v, "0"))
	assert.Error(t, applyPositiveUint32(&v, "-5"))
	require.NoError(t, applyPositiveUint32(&v, "50"))
	assert.EqualValues(t, 50, v)
}

func TestApplyPositiveFloat(t *testing.T) {
	var v float64
	assert.Error(t, applyPositiveFloat(&v, "0"))
	assert.Error(t, applyPositiveFloat(&v, "-0.5"))
	require.NoError(t, applyPositiveFloat(&v, "2.5"))
	assert.InDelta(t, 2.5, v, 0.0001)
}

func TestFormatUint32AndRatio(t *testing.T) {
	assert.Equal(t, "42", formatUint32(42))
	assert.Equal(t, "2.00", formatRatio(2))
}

func TestPreferenceFieldsOrderMatchesCanonicalNames(t *testing.T) {
	require.Len(t, PreferenceFields, 18)
	assert.Equal(t, "download_dir", PreferenceFields[0].Name)
	assert.Equal(t, "blocklist_url", PreferenceFields[len(PreferenceFields)-1].Name)
}
