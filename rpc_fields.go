/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import "strings"

// legacyMethodNames renames a dialect-A (underscore) method to its dialect-B
// (hyphenated) spelling. Unknown methods pass through unchanged — the
// client never emits a method outside this closed set.
var legacyMethodNames = map[string]string{
	"session_get":    "session-get",
	"session_set":    "session-set",
	"session_stats":  "session-stats",
	"torrent_get":    "torrent-get",
	"torrent_add":    "torrent-add",
	"torrent_remove": "torrent-remove",
	"torrent_start":  "torrent-start",
	"torrent_stop":   "torrent-stop",
}

func legacyMethodName(method string) string {
	if renamed, ok := legacyMethodNames[method]; ok {
		return renamed
	}
	return method
}

// legacySessionFieldNames renames session_get/session_set field and
// argument-key names (underscore -> legacy). seed_ratio_limit[ed] are the
// two exceptions whose legacy spelling is camelCase rather than hyphenated.
var legacySessionFieldNames = map[string]string{
	"download_dir":               "download-dir",
	"start_added_torrents":       "start-added-torrents",
	"speed_limit_up":             "speed-limit-up",
	"speed_limit_up_enabled":     "speed-limit-up-enabled",
	"speed_limit_down":           "speed-limit-down",
	"speed_limit_down_enabled":   "speed-limit-down-enabled",
	"seed_ratio_limited":         "seedRatioLimited",
	"seed_ratio_limit":           "seedRatioLimit",
	"idle_seeding_limit":         "idle-seeding-limit",
	"idle_seeding_limit_enabled": "idle-seeding-limit-enabled",
	"peer_limit_per_torrent":     "peer-limit-per-torrent",
	"peer_limit_global":          "peer-limit-global",
	"pex_enabled":                "pex-enabled",
	"dht_enabled":                "dht-enabled",
	"lpd_enabled":                "lpd-enabled",
	"blocklist_enabled":          "blocklist-enabled",
	"blocklist_url":              "blocklist-url",
	// "encryption" is unchanged under both dialects.
}

// legacyTorrentFieldNames renames torrent_get/torrent-response field names
// (underscore -> camelCase).
var legacyTorrentFieldNames = map[string]string{
	"percent_done":           "percentDone",
	"rate_download":          "rateDownload",
	"rate_upload":            "rateUpload",
	"upload_ratio":           "uploadRatio",
	"size_when_done":         "sizeWhenDone",
	"left_until_done":        "leftUntilDone",
	"download_dir":           "downloadDir",
	"peers_connected":        "peersConnected",
	"peers_sending_to_us":    "peersSendingToUs",
	"peers_getting_from_us":  "peersGettingFromUs",
	"error_string":           "errorString",
}

func legacySessionFieldName(name string) string {
	if renamed, ok := legacySessionFieldNames[name]; ok {
		return renamed
	}
	return name
}

func legacyTorrentFieldName(name string) string {
	if renamed, ok := legacyTorrentFieldNames[name]; ok {
		return renamed
	}
	return name
}

// translateArgumentsForLegacy rewrites an outbound argument map from
// dialect-A spellings to dialect-B spellings, per the method-specific rules
// of spec.md §4.1. It never mutates its input.
func translateArgumentsForLegacy(method string, args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}

	switch method {
	case "torrent_get", "session_get":
		if rawFields, ok := out["fields"].([]string); ok {
			renamed := make([]string, len(rawFields))
			for i, f := range rawFields {
				if method == "torrent_get" {
					renamed[i] = legacyTorrentFieldName(f)
				} else {
					renamed[i] = legacySessionFieldName(f)
				}
			}
			out["fields"] = renamed
		}
	case "session_set":
		renamed := make(map[string]any, len(out))
		for k, v := range out {
			renamed[legacySessionFieldName(k)] = v
		}
		return renamed
	case "torrent_remove":
		if v, ok := out["delete_local_data"]; ok {
			delete(out, "delete_local_data")
			out["delete-local-data"] = v
		}
	}
	return out
}

// isMethodNotFoundMessage matches the case-insensitive "method not found" /
// "method name not recognized" phrases spec.md §4.1 requires.
func isMethodNotFoundMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "method not found") || strings.Contains(lower, "method name not recognized")
}

// torrentFieldAliases lists every spelling a torrent_get response may use
// for a given canonical (underscore) field name, across both dialects.
var torrentFieldAliases = map[string][]string{
	"id":                     {"id"},
	"name":                   {"name"},
	"status":                 {"status"},
	"percent_done":           {"percent_done", "percentDone"},
	"rate_download":          {"rate_download", "rateDownload"},
	"rate_upload":            {"rate_upload", "rateUpload"},
	"eta":                    {"eta"},
	"upload_ratio":           {"upload_ratio", "uploadRatio"},
	"size_when_done":         {"size_when_done", "sizeWhenDone"},
	"left_until_done":        {"left_until_done", "leftUntilDone"},
	"download_dir":           {"download_dir", "downloadDir"},
	"peers_connected":        {"peers_connected", "peersConnected"},
	"peers_sending_to_us":    {"peers_sending_to_us", "peersSendingToUs"},
	"peers_getting_from_us":  {"peers_getting_from_us", "peersGettingFromUs"},
	"error_string":           {"error_string", "errorString"},
	"peers":                  {"peers"},
}

// sessionStatsFieldAliases lists every spelling a session_stats response may
// use for a given canonical (underscore) field name, across both dialects.
var sessionStatsFieldAliases = map[string][]string{
	"download_speed":       {"download_speed", "downloadSpeed"},
	"upload_speed":         {"upload_speed", "uploadSpeed"},
	"active_torrent_count": {"active_torrent_count", "activeTorrentCount"},
	"paused_torrent_count": {"paused_torrent_count", "pausedTorrentCount"},
	"torrent_count":        {"torrent_count", "torrentCount"},
}

// peerFieldAliases lists spellings for the nested peer object fields.
var peerFieldAliases = map[string][]string{
	"address":        {"address"},
	"client_name":    {"client_name", "clientName"},
	"progress":       {"progress"},
	"rate_to_client": {"rate_to_client", "rateToClient"},
	"rate_to_peer":   {"rate_to_peer", "rateToPeer"},
}

func lookupAliased(m map[string]any, aliases []string) (any, bool) {
	for _, a := range aliases {
		if v, ok := m[a]; ok {
			return v, true
		}
	}
	return nil, false
}

func wireString(m map[string]any, aliases []string, def string) string {
	v, ok := lookupAliased(m, aliases)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

func wireInt64(m map[string]any, aliases []string, def int64) int64 {
	v, ok := lookupAliased(m, aliases)
	if !ok {
		return def
	}
	f, ok := v.(float64)
	if !ok {
		return def
	}
	return int64(f)
}

func wireFloat(m map[string]any, aliases []string, def float64) float64 {
	v, ok := lookupAliased(m, aliases)
	if !ok {
		return def
	}
	f, ok := v.(float64)
	if !ok {
		return def
	}
	return f
}
