/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// canonicalTorrentFields is the fixed field set requested by torrent_get,
// per spec.md §4.1's snapshot-composition rule.
var canonicalTorrentFields = []string{
	"id", "name", "status", "percent_done", "rate_download", "rate_upload",
	"eta", "upload_ratio", "size_when_done", "left_until_done", "download_dir",
	"peers_connected", "peers_sending_to_us", "peers_getting_from_us",
	"error_string", "peers",
}

// RPCErrorKind classifies a failed RPC per spec.md §4.1's closed taxonomy.
type RPCErrorKind int

const (
	RPCErrorHTTP RPCErrorKind = iota
	RPCErrorAuthentication
	RPCErrorSession
	RPCErrorHTTPStatus
	RPCErrorRPC
	RPCErrorParse
)

// RPCError is the single error type surfaced by Client, carrying enough
// context for the worker to build a prefixed status message.
type RPCError struct {
	Kind       RPCErrorKind
	Code       int64
	Message    string
	Context    string
	StatusCode int
	Err        error
}

func (e *RPCError) Error() string {
	switch e.Kind {
	case RPCErrorAuthentication:
		return "authentication failed"
	case RPCErrorSession:
		return "session error: " + e.Message
	case RPCErrorHTTPStatus:
		return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
	case RPCErrorRPC:
		if e.Context != "" {
			return fmt.Sprintf("rpc error %d: %s (%s)", e.Code, e.Message, e.Context)
		}
		return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
	case RPCErrorParse:
		return "parse error: " + e.Message
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "http error: " + e.Message
	}
}

func (e *RPCError) Unwrap() error { return e.Err }

// ConnectionConfig carries the subset of the configuration surface (§6)
// that the RPC client needs.
type ConnectionConfig struct {
	Endpoint           string
	Username           string
	Password           string
	UserAgent          string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

func newHTTPClient(cfg ConnectionConfig) *http.Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
	}
	return &http.Client{Timeout: cfg.Timeout, Transport: transport}
}

// Client is the dual-dialect Transmission RPC client described in
// spec.md §4.1. Every exported RPC method is safe for concurrent use, though
// the worker that owns a Client is currently single-threaded (§5).
// Reconfigure is the exception: it replaces the configuration and HTTP
// client without synchronization against calls in flight.
type Client struct {
	cfg    ConnectionConfig
	http   *http.Client
	id     string
	logger zerolog.Logger

	dialectA atomic.Bool // true = dialect A (JSON-RPC 2.0); one-way true->false
	tag      atomic.Int64

	tokenMu sync.Mutex
	token   string
}

// NewClient constructs a Client starting optimistically in dialect A, per
// spec.md §4.1.
func NewClient(cfg ConnectionConfig, logger zerolog.Logger) *Client {
	c := &Client{
		cfg:    cfg,
		http:   newHTTPClient(cfg),
		id:     uuid.NewString()[:8],
		logger: logger.With().Str("rpc_client", "").Logger(),
	}
	c.dialectA.Store(true)
	return c
}

// Reconfigure swaps connection settings (endpoint, credentials, timeout)
// without resetting the dialect flag or session token — both remain valid
// for the life of the process per spec.md §3.
func (c *Client) Reconfigure(cfg ConnectionConfig) {
	c.cfg = cfg
	c.http = newHTTPClient(cfg)
}

func (c *Client) sessionToken() string {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	return c.token
}

func (c *Client) setSessionToken(tok string) {
	c.tokenMu.Lock()
	c.token = tok
	c.tokenMu.Unlock()
}

func (c *Client) nextTag() int64 {
	return c.tag.Add(1)
}

func (c *Client) isLegacy() bool {
	return !c.dialectA.Load()
}

func (c *Client) downgradeToLegacy() {
	c.dialectA.CompareAndSwap(true, false)
}

// --- wire envelopes ---

type jsonRPCRequestWire struct {
	Jsonrpc string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      int64  `json:"id"`
}

type jsonRPCResponseWire struct {
	Jsonrpc string           `json:"jsonrpc"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *jsonRPCErrWire  `json:"error,omitempty"`
	ID      int64            `json:"id"`
}

type jsonRPCErrWire struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type legacyRequestWire struct {
	Method    string `json:"method"`
	Arguments any    `json:"arguments,omitempty"`
	Tag       int64  `json:"tag"`
}

type legacyResponseWire struct {
	Result    string          `json:"result"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Tag       int64           `json:"tag"`
}

// do dispatches a single logical RPC, handling dialect negotiation and
// delegating the session-token 409 retry to send for each attempt
// independently (per the Open Question decision in DESIGN.md).
func (c *Client) do(ctx context.Context, method string, args map[string]any) (map[string]any, error) {
	return c.doArgs(ctx, method, func(legacy bool) map[string]any { return args })
}

// doArgs is do, but rebuilds the arguments for each dialect attempt via
// argsFor instead of reusing a single pre-built map. translateArgumentsForLegacy
// only renames argument keys on a downgrade retry; any call whose argument
// VALUES also differ by dialect (session_set's encryption field) must use
// doArgs so the retry sees the legacy-dialect value, not a stale one baked
// in before the downgrade happened.
func (c *Client) doArgs(ctx context.Context, method string, argsFor func(legacy bool) map[string]any) (map[string]any, error) {
	legacy := c.isLegacy()
	result, rpcErr, methodNotFound := c.attempt(ctx, method, argsFor(legacy), legacy)
	if methodNotFound && !legacy {
		c.logger.Debug().Str("method", method).Msg("daemon reports method not found, downgrading to legacy dialect")
		c.downgradeToLegacy()
		result, rpcErr, _ = c.attempt(ctx, method, argsFor(true), true)
	}
	if rpcErr != nil {
		return nil, rpcErr
	}
	return result, nil
}

func (c *Client) attempt(ctx context.Context, method string, args map[string]any, legacy bool) (map[string]any, *RPCError, bool) {
	tag := c.nextTag()

	body, err := c.buildRequest(method, args, legacy, tag)
	if err != nil {
		return nil, &RPCError{Kind: RPCErrorParse, Message: err.Error(), Err: err}, false
	}

	raw, rpcErr := c.send(ctx, body)
	if rpcErr != nil {
		return nil, rpcErr, false
	}

	return c.parseResponse(raw, legacy)
}

func (c *Client) buildRequest(method string, args map[string]any, legacy bool, tag int64) ([]byte, error) {
	if !legacy {
		req := jsonRPCRequestWire{Jsonrpc: "2.0", Method: method, ID: tag}
		if args != nil {
			req.Params = args
		}
		return json.Marshal(req)
	}

	req := legacyRequestWire{Method: legacyMethodName(method), Tag: tag}
	if translated := translateArgumentsForLegacy(method, args); translated != nil {
		req.Arguments = translated
	}
	return json.Marshal(req)
}

// send performs the HTTP exchange, handling authentication, HTTP status
// semantics, and a transparent 409 session-token refresh-and-retry of the
// identical payload, per spec.md §4.1/§6.
func (c *Client) send(ctx context.Context, body []byte) ([]byte, *RPCError) {
	for retries := 0; retries < 2; retries++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, &RPCError{Kind: RPCErrorHTTP, Message: err.Error(), Err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.UserAgent != "" {
			req.Header.Set("User-Agent", c.cfg.UserAgent)
		} else {
			req.Header.Set("User-Agent", "transmission-tui")
		}
		if c.cfg.Username != "" {
			req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
		}
		if tok := c.sessionToken(); tok != "" {
			req.Header.Set("X-Transmission-Session-Id", tok)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, &RPCError{Kind: RPCErrorHTTP, Message: err.Error(), Err: err}
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, &RPCError{Kind: RPCErrorHTTP, Message: readErr.Error(), Err: readErr}
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, &RPCError{Kind: RPCErrorAuthentication, StatusCode: http.StatusUnauthorized}
		case resp.StatusCode == http.StatusConflict:
			tok := resp.Header.Get("X-Transmission-Session-Id")
			if tok == "" {
				return nil, &RPCError{Kind: RPCErrorSession, StatusCode: http.StatusConflict, Message: "no session token in 409 response"}
			}
			c.logger.Debug().Str("token", tok).Msg("refreshed session token")
			c.setSessionToken(tok)
			continue
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return nil, &RPCError{Kind: RPCErrorHTTPStatus, StatusCode: resp.StatusCode}
		default:
			return data, nil
		}
	}
	return nil, &RPCError{Kind: RPCErrorSession, Message: "exceeded session token retry attempts"}
}

func (c *Client) parseResponse(raw []byte, legacy bool) (map[string]any, *RPCError, bool) {
	if !legacy {
		var resp jsonRPCResponseWire
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, &RPCError{Kind: RPCErrorParse, Message: err.Error(), Err: err}, false
		}
		if resp.Error != nil {
			methodNotFound := resp.Error.Code == -32601 || isMethodNotFoundMessage(resp.Error.Message)
			return nil, &RPCError{Kind: RPCErrorRPC, Code: resp.Error.Code, Message: resp.Error.Message}, methodNotFound
		}
		var result map[string]any
		if len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, &result); err != nil {
				return nil, &RPCError{Kind: RPCErrorParse, Message: err.Error(), Err: err}, false
			}
		}
		return result, nil, false
	}

	var resp legacyResponseWire
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &RPCError{Kind: RPCErrorParse, Message: err.Error(), Err: err}, false
	}
	if resp.Result != "success" {
		var argsMap map[string]any
		if len(resp.Arguments) > 0 {
			_ = json.Unmarshal(resp.Arguments, &argsMap)
		}
		context := ""
		if s, ok := argsMap["error_string"].(string); ok && s != "" {
			context = s
		} else if s, ok := argsMap["errorString"].(string); ok && s != "" {
			context = s
		} else if r, ok := argsMap["result"]; ok && r != nil {
			context = fmt.Sprintf("%v", r)
		}
		return nil, &RPCError{Kind: RPCErrorRPC, Code: -1, Message: resp.Result, Context: context}, false
	}
	var result map[string]any
	if len(resp.Arguments) > 0 {
		if err := json.Unmarshal(resp.Arguments, &result); err != nil {
			return nil, &RPCError{Kind: RPCErrorParse, Message: err.Error(), Err: err}, false
		}
	}
	return result, nil, false
}

// FetchSnapshot issues torrent_get, session_stats and session_get, failing
// the whole snapshot if any of the three fails, per spec.md §4.1.
func (c *Client) FetchSnapshot(ctx context.Context) (Snapshot, error) {
	torrentsResult, err := c.do(ctx, "torrent_get", map[string]any{"fields": canonicalTorrentFields})
	if err != nil {
		return Snapshot{}, err
	}
	statsResult, err := c.do(ctx, "session_stats", nil)
	if err != nil {
		return Snapshot{}, err
	}
	versionResult, err := c.do(ctx, "session_get", map[string]any{"fields": []string{"version"}})
	if err != nil {
		return Snapshot{}, err
	}

	torrents := decodeTorrents(torrentsResult)
	snap := Snapshot{
		Version:        wireString(versionResult, []string{"version"}, ""),
		DownloadSpeed:  wireInt64(statsResult, sessionStatsFieldAliases["download_speed"], 0),
		UploadSpeed:    wireInt64(statsResult, sessionStatsFieldAliases["upload_speed"], 0),
		ActiveTorrents: wireInt64(statsResult, sessionStatsFieldAliases["active_torrent_count"], 0),
		PausedTorrents: wireInt64(statsResult, sessionStatsFieldAliases["paused_torrent_count"], 0),
		TotalTorrents:  wireInt64(statsResult, sessionStatsFieldAliases["torrent_count"], int64(len(torrents))),
		Torrents:       torrents,
	}
	return snap, nil
}

func decodeTorrents(result map[string]any) []TorrentSummary {
	raw, _ := result["torrents"].([]any)
	torrents := make([]TorrentSummary, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		torrents = append(torrents, decodeTorrent(m))
	}
	return torrents
}

func decodeTorrent(m map[string]any) TorrentSummary {
	status := wireInt64(m, torrentFieldAliases["status"], 0)
	rawETA := wireInt64(m, []string{"eta"}, -1)

	var peers []PeerSummary
	if rawPeers, ok := lookupAliased(m, torrentFieldAliases["peers"]); ok {
		if list, ok := rawPeers.([]any); ok {
			peers = make([]PeerSummary, 0, len(list))
			for _, p := range list {
				if pm, ok := p.(map[string]any); ok {
					peers = append(peers, decodePeer(pm))
				}
			}
		}
	}

	return TorrentSummary{
		ID:             int64(wireFloatOrZero(m["id"])),
		Name:           wireString(m, torrentFieldAliases["name"], ""),
		Status:         torrentStatusName(status),
		PercentDone:    wireFloat(m, torrentFieldAliases["percent_done"], 0),
		RateDownload:   wireInt64(m, torrentFieldAliases["rate_download"], 0),
		RateUpload:     wireInt64(m, torrentFieldAliases["rate_upload"], 0),
		ETA:            etaFromWire(rawETA),
		UploadRatio:    wireFloat(m, torrentFieldAliases["upload_ratio"], 0),
		SizeWhenDone:   wireInt64(m, torrentFieldAliases["size_when_done"], 0),
		LeftUntilDone:  wireInt64(m, torrentFieldAliases["left_until_done"], 0),
		DownloadDir:    wireString(m, torrentFieldAliases["download_dir"], ""),
		PeersConnected: wireInt64(m, torrentFieldAliases["peers_connected"], 0),
		PeersSending:   wireInt64(m, torrentFieldAliases["peers_sending_to_us"], 0),
		PeersReceiving: wireInt64(m, torrentFieldAliases["peers_getting_from_us"], 0),
		Error:          wireString(m, torrentFieldAliases["error_string"], ""),
		Peers:          peers,
	}
}

func decodePeer(m map[string]any) PeerSummary {
	return PeerSummary{
		Address:  wireString(m, peerFieldAliases["address"], ""),
		Client:   wireString(m, peerFieldAliases["client_name"], ""),
		Progress: wireFloat(m, peerFieldAliases["progress"], 0),
		RateDown: wireInt64(m, peerFieldAliases["rate_to_client"], 0),
		RateUp:   wireInt64(m, peerFieldAliases["rate_to_peer"], 0),
	}
}

func wireFloatOrZero(v any) float64 {
	f, _ := v.(float64)
	return f
}

// FetchPreferences issues session_get with no fields filter and decodes the
// full preferences payload.
func (c *Client) FetchPreferences(ctx context.Context) (DaemonPreferences, error) {
	result, err := c.do(ctx, "session_get", nil)
	if err != nil {
		return DaemonPreferences{}, err
	}
	return preferencesFromWire(result), nil
}

// UpdatePreferences performs session_set followed by session_get in one
// logical call, per spec.md §4.2.
func (c *Client) UpdatePreferences(ctx context.Context, prefs DaemonPreferences) (DaemonPreferences, error) {
	argsFor := func(legacy bool) map[string]any { return prefs.toRPCArguments(legacy) }
	if _, err := c.doArgs(ctx, "session_set", argsFor); err != nil {
		return DaemonPreferences{}, err
	}
	result, err := c.do(ctx, "session_get", nil)
	if err != nil {
		return DaemonPreferences{}, err
	}
	return preferencesFromWire(result), nil
}

// AddMagnetOutcome reports whether a torrent_add call added a new torrent
// or found a duplicate, per spec.md §4.1's add-torrent outcome rule.
type AddMagnetOutcome struct {
	Added     bool
	Duplicate bool
	ID        int64
	Name      string
}

func (c *Client) AddMagnet(ctx context.Context, uri string) (AddMagnetOutcome, error) {
	result, err := c.do(ctx, "torrent_add", map[string]any{"filename": uri})
	if err != nil {
		return AddMagnetOutcome{}, err
	}
	if added, ok := lookupAliased(result, []string{"torrent_added", "torrent-added", "torrentAdded"}); ok {
		if m, ok := added.(map[string]any); ok {
			return AddMagnetOutcome{
				Added: true,
				ID:    int64(wireFloatOrZero(m["id"])),
				Name:  wireString(m, []string{"name"}, ""),
			}, nil
		}
	}
	if dup, ok := lookupAliased(result, []string{"torrent_duplicate", "torrent-duplicate", "torrentDuplicate"}); ok {
		if m, ok := dup.(map[string]any); ok {
			return AddMagnetOutcome{
				Duplicate: true,
				ID:        int64(wireFloatOrZero(m["id"])),
				Name:      wireString(m, []string{"name"}, ""),
			}, nil
		}
	}
	return AddMagnetOutcome{}, nil
}

func (c *Client) RemoveTorrents(ctx context.Context, ids []int64, deleteLocalData bool) error {
	_, err := c.do(ctx, "torrent_remove", map[string]any{
		"ids":               ids,
		"delete_local_data": deleteLocalData,
	})
	return err
}

func (c *Client) StartTorrents(ctx context.Context, ids []int64) error {
	_, err := c.do(ctx, "torrent_start", map[string]any{"ids": ids})
	return err
}

func (c *Client) StopTorrents(ctx context.Context, ids []int64) error {
	_, err := c.do(ctx, "torrent_stop", map[string]any{"ids": ids})
	return err
}
