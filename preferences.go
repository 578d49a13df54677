/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import "strings"

// EncryptionMode is the daemon's session encryption preference. Its wire
// value differs by dialect: see rpcValue.
type EncryptionMode int

const (
	EncryptionPrefer EncryptionMode = iota
	EncryptionAllow
	EncryptionRequire
)

// encryptionModeCycle is the fixed cycling order used by the Left/Right
// editor binding in the preferences form.
var encryptionModeCycle = []EncryptionMode{EncryptionPrefer, EncryptionAllow, EncryptionRequire}

func (m EncryptionMode) label() string {
	switch m {
	case EncryptionAllow:
		return "Allow encryption"
	case EncryptionRequire:
		return "Require encryption"
	default:
		return "Prefer encryption"
	}
}

// rpcValue renders the wire value for the given dialect. Dialect B spells
// "allowed" as "tolerated"; both decode to EncryptionAllow.
func (m EncryptionMode) rpcValue(legacy bool) string {
	switch m {
	case EncryptionAllow:
		if legacy {
			return "tolerated"
		}
		return "allowed"
	case EncryptionRequire:
		return "required"
	default:
		return "preferred"
	}
}

// encryptionModeFromRPC parses either dialect's wire spelling.
func encryptionModeFromRPC(value string) EncryptionMode {
	switch value {
	case "required":
		return EncryptionRequire
	case "allowed", "tolerated":
		return EncryptionAllow
	default:
		return EncryptionPrefer
	}
}

// nextEncryptionMode cycles [Prefer, Allow, Require] modulo 3.
func nextEncryptionMode(m EncryptionMode) EncryptionMode {
	for i, v := range encryptionModeCycle {
		if v == m {
			return encryptionModeCycle[(i+1)%len(encryptionModeCycle)]
		}
	}
	return EncryptionPrefer
}

// DaemonPreferences holds the 18 enumerated session preference fields
// tracked by the preferences form. Field order here is the canonical
// display/save order used throughout the form.
type DaemonPreferences struct {
	DownloadDir              string
	StartWhenAdded           bool
	SpeedLimitUpEnabled      bool
	SpeedLimitUp             uint32
	SpeedLimitDownEnabled    bool
	SpeedLimitDown           uint32
	SeedRatioLimited         bool
	SeedRatioLimit           float64
	IdleSeedingLimitEnabled  bool
	IdleSeedingLimit         uint32
	PeerLimitPerTorrent      uint32
	PeerLimitGlobal          uint32
	EncryptionMode           EncryptionMode
	PEXEnabled               bool
	DHTEnabled               bool
	LPDEnabled               bool
	BlocklistEnabled         bool
	BlocklistURL             string // empty means absent
}

// toRPCArguments renders the preferences as a session_set argument map
// using canonical (dialect A) field names; the client's legacy translator
// (translateArgumentsForLegacy) rewrites keys when the active dialect is B. blocklist_url is always sent
// as a string, empty when absent, matching the daemon's own wire contract.
func (p DaemonPreferences) toRPCArguments(legacy bool) map[string]any {
	return map[string]any{
		"download_dir":               p.DownloadDir,
		"start_added_torrents":       p.StartWhenAdded,
		"speed_limit_up_enabled":     p.SpeedLimitUpEnabled,
		"speed_limit_up":             p.SpeedLimitUp,
		"speed_limit_down_enabled":   p.SpeedLimitDownEnabled,
		"speed_limit_down":           p.SpeedLimitDown,
		"seed_ratio_limited":         p.SeedRatioLimited,
		"seed_ratio_limit":           p.SeedRatioLimit,
		"idle_seeding_limit_enabled": p.IdleSeedingLimitEnabled,
		"idle_seeding_limit":         p.IdleSeedingLimit,
		"peer_limit_per_torrent":     p.PeerLimitPerTorrent,
		"peer_limit_global":          p.PeerLimitGlobal,
		"encryption":                 p.EncryptionMode.rpcValue(legacy),
		"pex_enabled":                p.PEXEnabled,
		"dht_enabled":                p.DHTEnabled,
		"lpd_enabled":                p.LPDEnabled,
		"blocklist_enabled":          p.BlocklistEnabled,
		"blocklist_url":              p.BlocklistURL,
	}
}

// preferencesFromWire builds a DaemonPreferences out of a tolerant wire
// decode (see lookupPreferenceField in preferences_parse.go), filling in the same defaults
// as the original client whenever a field is absent from the response.
func preferencesFromWire(fields map[string]any) DaemonPreferences {
	return DaemonPreferences{
		DownloadDir:             fieldString(fields, "download_dir", ""),
		StartWhenAdded:          fieldBool(fields, "start_added_torrents", true),
		SpeedLimitUpEnabled:     fieldBool(fields, "speed_limit_up_enabled", false),
		SpeedLimitUp:            fieldUint32(fields, "speed_limit_up", 0),
		SpeedLimitDownEnabled:   fieldBool(fields, "speed_limit_down_enabled", false),
		SpeedLimitDown:          fieldUint32(fields, "speed_limit_down", 0),
		SeedRatioLimited:        fieldBool(fields, "seed_ratio_limited", false),
		SeedRatioLimit:          fieldFloat(fields, "seed_ratio_limit", 2.0),
		IdleSeedingLimitEnabled: fieldBool(fields, "idle_seeding_limit_enabled", false),
		IdleSeedingLimit:        fieldUint32(fields, "idle_seeding_limit", 30),
		PeerLimitPerTorrent:     fieldUint32(fields, "peer_limit_per_torrent", 50),
		PeerLimitGlobal:         fieldUint32(fields, "peer_limit_global", 200),
		EncryptionMode:          encryptionModeFromRPC(fieldString(fields, "encryption", "preferred")),
		PEXEnabled:              fieldBool(fields, "pex_enabled", true),
		DHTEnabled:              fieldBool(fields, "dht_enabled", true),
		LPDEnabled:              fieldBool(fields, "lpd_enabled", true),
		BlocklistEnabled:        fieldBool(fields, "blocklist_enabled", false),
		BlocklistURL:            strings.TrimSpace(fieldString(fields, "blocklist_url", "")),
	}
}

// preferenceFieldAliases lists, per canonical field name, every spelling a
// response may use it under: underscore (dialect A), hyphenated (legacy
// dialect B), except for the two ratio-limit fields, whose dialect-B
// spelling is camelCase rather than hyphenated.
var preferenceFieldAliases = map[string][]string{
	"download_dir":               {"download_dir", "download-dir"},
	"start_added_torrents":       {"start_added_torrents", "start-added-torrents"},
	"speed_limit_up":             {"speed_limit_up", "speed-limit-up"},
	"speed_limit_up_enabled":     {"speed_limit_up_enabled", "speed-limit-up-enabled"},
	"speed_limit_down":           {"speed_limit_down", "speed-limit-down"},
	"speed_limit_down_enabled":   {"speed_limit_down_enabled", "speed-limit-down-enabled"},
	"seed_ratio_limited":         {"seed_ratio_limited", "seedRatioLimited"},
	"seed_ratio_limit":           {"seed_ratio_limit", "seedRatioLimit"},
	"idle_seeding_limit_enabled": {"idle_seeding_limit_enabled", "idle-seeding-limit-enabled"},
	"idle_seeding_limit":         {"idle_seeding_limit", "idle-seeding-limit"},
	"peer_limit_per_torrent":     {"peer_limit_per_torrent", "peer-limit-per-torrent"},
	"peer_limit_global":          {"peer_limit_global", "peer-limit-global"},
	"encryption":                 {"encryption"},
	"pex_enabled":                {"pex_enabled", "pex-enabled"},
	"dht_enabled":                {"dht_enabled", "dht-enabled"},
	"lpd_enabled":                {"lpd_enabled", "lpd-enabled"},
	"blocklist_enabled":          {"blocklist_enabled", "blocklist-enabled"},
	"blocklist_url":              {"blocklist_url", "blocklist-url"},
}

// PreferenceFieldKind distinguishes the three editing behaviors of
// SPEC_FULL.md §4.4.
type PreferenceFieldKind int

const (
	PreferenceToggle PreferenceFieldKind = iota
	PreferenceEncryption
	PreferenceEditor
)

// PreferenceField describes one of the 18 ordered fields shown by the
// preferences form: its label, edit behavior, display renderer, and
// (for editor fields) how to parse and apply committed text.
type PreferenceField struct {
	Name    string
	Label   string
	Kind    PreferenceFieldKind
	Display func(DaemonPreferences) string
	// Toggle flips a boolean field in place; only used when Kind == PreferenceToggle.
	Toggle func(*DaemonPreferences)
	// InitialText seeds the inline editor buffer; only used when Kind == PreferenceEditor.
	InitialText func(DaemonPreferences) string
	// Apply parses committed editor text and applies it, or returns an error
	// describing why the text was rejected; only used when Kind == PreferenceEditor.
	Apply func(*DaemonPreferences, string) error
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// PreferenceFields is the canonical ordered field list driving the
// preferences form; order matches the DaemonPreferences struct and
// spec.md's data model table.
var PreferenceFields = []PreferenceField{
	{
		Name: "download_dir", Label: "Download directory", Kind: PreferenceEditor,
		Display:     func(p DaemonPreferences) string { return p.DownloadDir },
		InitialText: func(p DaemonPreferences) string { return p.DownloadDir },
		Apply:       func(p *DaemonPreferences, text string) error { return applyDownloadDir(p, text) },
	},
	{
		Name: "start_added_torrents", Label: "Start when added", Kind: PreferenceToggle,
		Display: func(p DaemonPreferences) string { return yesNo(p.StartWhenAdded) },
		Toggle:  func(p *DaemonPreferences) { p.StartWhenAdded = !p.StartWhenAdded },
	},
	{
		Name: "speed_limit_up_enabled", Label: "Upload limit enabled", Kind: PreferenceToggle,
		Display: func(p DaemonPreferences) string { return yesNo(p.SpeedLimitUpEnabled) },
		Toggle:  func(p *DaemonPreferences) { p.SpeedLimitUpEnabled = !p.SpeedLimitUpEnabled },
	},
	{
		Name: "speed_limit_up", Label: "Upload limit (KB/s)", Kind: PreferenceEditor,
		Display:     func(p DaemonPreferences) string { return formatUint32(p.SpeedLimitUp) },
		InitialText: func(p DaemonPreferences) string { return formatUint32(p.SpeedLimitUp) },
		Apply:       func(p *DaemonPreferences, text string) error { return applyNonNegativeUint32(&p.SpeedLimitUp, text) },
	},
	{
		Name: "speed_limit_down_enabled", Label: "Download limit enabled", Kind: PreferenceToggle,
		Display: func(p DaemonPreferences) string { return yesNo(p.SpeedLimitDownEnabled) },
		Toggle:  func(p *DaemonPreferences) { p.SpeedLimitDownEnabled = !p.SpeedLimitDownEnabled },
	},
	{
		Name: "speed_limit_down", Label: "Download limit (KB/s)", Kind: PreferenceEditor,
		Display:     func(p DaemonPreferences) string { return formatUint32(p.SpeedLimitDown) },
		InitialText: func(p DaemonPreferences) string { return formatUint32(p.SpeedLimitDown) },
		Apply:       func(p *DaemonPreferences, text string) error { return applyNonNegativeUint32(&p.SpeedLimitDown, text) },
	},
	{
		Name: "seed_ratio_limited", Label: "Seed ratio limit enabled", Kind: PreferenceToggle,
		Display: func(p DaemonPreferences) string { return yesNo(p.SeedRatioLimited) },
		Toggle:  func(p *DaemonPreferences) { p.SeedRatioLimited = !p.SeedRatioLimited },
	},
	{
		Name: "seed_ratio_limit", Label: "Seed ratio limit", Kind: PreferenceEditor,
		Display:     func(p DaemonPreferences) string { return formatRatio(p.SeedRatioLimit) },
		InitialText: func(p DaemonPreferences) string { return formatRatio(p.SeedRatioLimit) },
		Apply:       func(p *DaemonPreferences, text string) error { return applyPositiveFloat(&p.SeedRatioLimit, text) },
	},
	{
		Name: "idle_seeding_limit_enabled", Label: "Idle seeding limit enabled", Kind: PreferenceToggle,
		Display: func(p DaemonPreferences) string { return yesNo(p.IdleSeedingLimitEnabled) },
		Toggle:  func(p *DaemonPreferences) { p.IdleSeedingLimitEnabled = !p.IdleSeedingLimitEnabled },
	},
	{
		Name: "idle_seeding_limit", Label: "Idle seeding limit (min)", Kind: PreferenceEditor,
		Display:     func(p DaemonPreferences) string { return formatUint32(p.IdleSeedingLimit) },
		InitialText: func(p DaemonPreferences) string { return formatUint32(p.IdleSeedingLimit) },
		Apply:       func(p *DaemonPreferences, text string) error { return applyNonNegativeUint32(&p.IdleSeedingLimit, text) },
	},
	{
		Name: "peer_limit_per_torrent", Label: "Peer limit per torrent", Kind: PreferenceEditor,
		Display:     func(p DaemonPreferences) string { return formatUint32(p.PeerLimitPerTorrent) },
		InitialText: func(p DaemonPreferences) string { return formatUint32(p.PeerLimitPerTorrent) },
		Apply:       func(p *DaemonPreferences, text string) error { return applyPositiveUint32(&p.PeerLimitPerTorrent, text) },
	},
	{
		Name: "peer_limit_global", Label: "Peer limit global", Kind: PreferenceEditor,
		Display:     func(p DaemonPreferences) string { return formatUint32(p.PeerLimitGlobal) },
		InitialText: func(p DaemonPreferences) string { return formatUint32(p.PeerLimitGlobal) },
		Apply:       func(p *DaemonPreferences, text string) error { return applyPositiveUint32(&p.PeerLimitGlobal, text) },
	},
	{
		Name: "encryption", Label: "Encryption", Kind: PreferenceEncryption,
		Display: func(p DaemonPreferences) string { return p.EncryptionMode.label() },
	},
	{
		Name: "pex_enabled", Label: "Peer exchange (PEX)", Kind: PreferenceToggle,
		Display: func(p DaemonPreferences) string { return yesNo(p.PEXEnabled) },
		Toggle:  func(p *DaemonPreferences) { p.PEXEnabled = !p.PEXEnabled },
	},
	{
		Name: "dht_enabled", Label: "DHT", Kind: PreferenceToggle,
		Display: func(p DaemonPreferences) string { return yesNo(p.DHTEnabled) },
		Toggle:  func(p *DaemonPreferences) { p.DHTEnabled = !p.DHTEnabled },
	},
	{
		Name: "lpd_enabled", Label: "Local peer discovery", Kind: PreferenceToggle,
		Display: func(p DaemonPreferences) string { return yesNo(p.LPDEnabled) },
		Toggle:  func(p *DaemonPreferences) { p.LPDEnabled = !p.LPDEnabled },
	},
	{
		Name: "blocklist_enabled", Label: "Blocklist enabled", Kind: PreferenceToggle,
		Display: func(p DaemonPreferences) string { return yesNo(p.BlocklistEnabled) },
		Toggle:  func(p *DaemonPreferences) { p.BlocklistEnabled = !p.BlocklistEnabled },
	},
	{
		Name: "blocklist_url", Label: "Blocklist URL", Kind: PreferenceEditor,
		Display:     func(p DaemonPreferences) string { return p.BlocklistURL },
		InitialText: func(p DaemonPreferences) string { return p.BlocklistURL },
		Apply: func(p *DaemonPreferences, text string) error {
			p.BlocklistURL = strings.TrimSpace(text)
			return nil
		},
	},
}
