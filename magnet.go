/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"encoding/base32"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
)

const btihPrefix = "urn:btih:"

// magnetInfoHash extracts and normalizes the BTIH info hash from a magnet
// URI typed into the add-magnet prompt, accepting both the 40-char hex and
// 32-char base32 encodings the BitTorrent spec allows. It returns an empty
// string (no error) for a non-magnet URI such as an HTTP torrent-file link,
// since those are still valid add_magnet input the daemon itself resolves.
func magnetInfoHash(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if u.Scheme != "magnet" {
		return "", nil
	}

	for _, xt := range u.Query()["xt"] {
		if !strings.HasPrefix(xt, btihPrefix) {
			continue
		}
		hash, err := regulateInfoHash(strings.TrimPrefix(xt, btihPrefix))
		if err != nil {
			continue
		}
		return hash, nil
	}
	return "", errors.New("magnet link has no recognizable urn:btih parameter")
}

// regulateInfoHash decodes a BTIH parameter into its canonical lowercase
// hex representation via metainfo.Hash.
func regulateInfoHash(s string) (string, error) {
	var decoded []byte
	var err error

	switch len(s) {
	case 40:
		decoded, err = hex.DecodeString(s)
	case 32:
		decoded, err = base32.StdEncoding.DecodeString(s)
	default:
		return "", errors.New("invalid urn:btih length")
	}
	if err != nil || len(decoded) != 20 {
		return "", errors.New("invalid urn:btih encoding")
	}
	var h metainfo.Hash
	copy(h[:], decoded)
	return h.HexString(), nil
}
