/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// fieldString, fieldBool, fieldUint32 and fieldFloat look a preferences
// wire field up under any of its known dialect spellings
// (preferenceFieldAliases), tolerating absence per the "inbound responses
// are parsed tolerantly" rule.
func lookupPreferenceField(fields map[string]any, name string) (any, bool) {
	for _, alias := range preferenceFieldAliases[name] {
		if v, ok := fields[alias]; ok {
			return v, true
		}
	}
	return nil, false
}

func fieldString(fields map[string]any, name, def string) string {
	v, ok := lookupPreferenceField(fields, name)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

func fieldBool(fields map[string]any, name string, def bool) bool {
	v, ok := lookupPreferenceField(fields, name)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func fieldUint32(fields map[string]any, name string, def uint32) uint32 {
	v, ok := lookupPreferenceField(fields, name)
	if !ok {
		return def
	}
	n, ok := v.(float64) // encoding/json decodes all JSON numbers as float64
	if !ok {
		return def
	}
	if n < 0 {
		return 0
	}
	return uint32(n)
}

func fieldFloat(fields map[string]any, name string, def float64) float64 {
	v, ok := lookupPreferenceField(fields, name)
	if !ok {
		return def
	}
	f, ok := v.(float64)
	if !ok {
		return def
	}
	return f
}

// formatUint32 and formatRatio back the editor fields' InitialText/Display
// renderers; they are intentionally plain, matching the original client's
// unadorned numeric columns.
func formatUint32(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// applyDownloadDir enforces the "non-empty trimmed string" parsing rule.
func applyDownloadDir(p *DaemonPreferences, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return fmt.Errorf("download directory cannot be empty")
	}
	p.DownloadDir = trimmed
	return nil
}

// applyNonNegativeUint32 parses an integer, rejecting negative values, for
// the speed-limit and idle-seeding-limit fields.
func applyNonNegativeUint32(dst *uint32, text string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return fmt.Errorf("not a valid integer: %q", text)
	}
	if n < 0 {
		return fmt.Errorf("value must not be negative")
	}
	*dst = uint32(n)
	return nil
}

// applyPositiveUint32 parses an integer, rejecting non-positive values, for
// the peer-limit fields.
func applyPositiveUint32(dst *uint32, text string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return fmt.Errorf("not a valid integer: %q", text)
	}
	if n <= 0 {
		return fmt.Errorf("value must be positive")
	}
	*dst = uint32(n)
	return nil
}

// applyPositiveFloat parses a decimal, rejecting values <= 0, for the seed
// ratio limit field.
func applyPositiveFloat(dst *float64, text string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return fmt.Errorf("not a valid number: %q", text)
	}
	if f <= 0 {
		return fmt.Errorf("value must be positive")
	}
	*dst = f
	return nil
}
