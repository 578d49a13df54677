/*
 * Copyright (C) 2024 Picking-gh <picking@woft.name>
 *
 * SPDX-License-Identifier: MIT
 */

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// CLIOptions is the flag surface parsed by go-flags, mirroring
// original_source/src/config.rs's Cli struct.
type CLIOptions struct {
	URL          string  `long:"url" description:"Full RPC endpoint URL, overrides scheme/host/port/path"`
	Host         string  `long:"host" description:"Daemon host" default:""`
	Port         uint16  `long:"port" description:"Daemon RPC port"`
	Path         string  `long:"path" description:"RPC path" default:""`
	Username     string  `long:"username" description:"Basic auth username"`
	Password     string  `long:"password" description:"Basic auth password"`
	Timeout      float64  `long:"timeout" description:"RPC request timeout in seconds"`
	PollInterval *float64 `long:"poll-interval" description:"Automatic refresh interval in seconds; 0 disables polling"`
	TLS          bool    `long:"tls" description:"Use https"`
	NoTLS        bool    `long:"no-tls" description:"Force http"`
	Insecure     bool    `long:"insecure" description:"Skip TLS certificate verification"`
	ConfigPath   string  `long:"config" description:"Path to a YAML configuration file"`
	LogLevel     string  `long:"log-level" description:"zerolog level name (trace|debug|info|warn|error)"`
	LogFile      string  `long:"log-file" description:"Log file path; empty uses transmission-tui/transmission-tui.log under the user cache directory"`
}

// fileConfig is the shape of the optional YAML configuration file.
type fileConfig struct {
	RPC          *fileRPCConfig `yaml:"rpc"`
	PollInterval *float64       `yaml:"poll_interval"`
	LogLevel     *string        `yaml:"log_level"`
	LogFile      *string        `yaml:"log_file"`
}

type fileRPCConfig struct {
	URL       *string  `yaml:"url"`
	Scheme    *string  `yaml:"scheme"`
	Host      *string  `yaml:"host"`
	Port      *uint16  `yaml:"port"`
	Path      *string  `yaml:"path"`
	Username  *string  `yaml:"username"`
	Password  *string  `yaml:"password"`
	Timeout   *float64 `yaml:"timeout"`
	TLS       *bool    `yaml:"tls"`
	VerifySSL *bool    `yaml:"verify_ssl"`
	UserAgent *string  `yaml:"user_agent"`
}

// AppConfig is the fully resolved configuration surface of spec.md §6.
type AppConfig struct {
	RPC          ConnectionConfig
	PollInterval time.Duration
	LogLevel     zerolog.Level
	LogFile      string
	ConfigPath   string // resolved path actually loaded, "" if none
}

// ParseCLI parses os.Args-style arguments with go-flags.
func ParseCLI(args []string) (CLIOptions, error) {
	var opts CLIOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "Transmission daemon terminal UI"
	if _, err := parser.ParseArgs(args); err != nil {
		return opts, err
	}
	return opts, nil
}

// BuildConfig layers CLI flags over environment variables over a YAML
// config file over built-in defaults, in that order of precedence, per
// SPEC_FULL.md §6 and original_source/src/config.rs's build_config.
func BuildConfig(cli CLIOptions) (AppConfig, error) {
	path := resolveConfigPath(cli.ConfigPath)
	file, err := loadFileConfig(path)
	if err != nil {
		return AppConfig{}, err
	}
	var rpcFile *fileRPCConfig
	if file != nil {
		rpcFile = file.RPC
	}

	url := firstNonEmpty(cli.URL, envString("TRANSMISSION_URL"), fileString(rpcFile, func(c *fileRPCConfig) *string { return c.URL }))

	host := firstNonEmpty(cli.Host, envString("TRANSMISSION_HOST"), fileString(rpcFile, func(c *fileRPCConfig) *string { return c.Host }))
	if host == "" {
		host = "localhost"
	}

	port := firstNonZeroUint16(cli.Port, envUint16("TRANSMISSION_PORT"), fileUint16(rpcFile, func(c *fileRPCConfig) *uint16 { return c.Port }))
	if port == 0 {
		port = 9091
	}

	path2 := firstNonEmpty(cli.Path, envString("TRANSMISSION_RPC_PATH"), fileString(rpcFile, func(c *fileRPCConfig) *string { return c.Path }))
	if path2 == "" {
		path2 = "/transmission/rpc"
	}

	username := firstNonEmpty(cli.Username, envString("TRANSMISSION_USERNAME"), fileString(rpcFile, func(c *fileRPCConfig) *string { return c.Username }))
	password := firstNonEmpty(cli.Password, envString("TRANSMISSION_PASSWORD"), fileString(rpcFile, func(c *fileRPCConfig) *string { return c.Password }))

	timeoutSecs := firstNonZeroFloat(cli.Timeout, floatPtrOrZero(envFloat("TRANSMISSION_TIMEOUT")), fileFloat(rpcFile, func(c *fileRPCConfig) *float64 { return c.Timeout }))
	if timeoutSecs == 0 {
		timeoutSecs = 10.0
	}
	if timeoutSecs < 0 {
		return AppConfig{}, fmt.Errorf("timeout must be positive")
	}

	var pollFromFile *float64
	if file != nil {
		pollFromFile = file.PollInterval
	}
	pollSecs := 3.0
	if v := firstSetFloat(cli.PollInterval, envFloat("TRANSMISSION_POLL_INTERVAL"), pollFromFile); v != nil {
		pollSecs = *v
	}
	if pollSecs < 0 {
		return AppConfig{}, fmt.Errorf("poll interval cannot be negative")
	}

	var tlsFlag *bool
	switch {
	case cli.TLS:
		v := true
		tlsFlag = &v
	case cli.NoTLS:
		v := false
		tlsFlag = &v
	}
	useTLS := boolWithDefault(false, tlsFlag, envBool("TRANSMISSION_TLS"), fileBool(rpcFile, func(c *fileRPCConfig) *bool { return c.TLS }))

	verifySSL := boolWithDefault(true, envBool("TRANSMISSION_VERIFY_SSL"), fileBool(rpcFile, func(c *fileRPCConfig) *bool { return c.VerifySSL }))
	if cli.Insecure {
		verifySSL = false
	}

	scheme := fileString(rpcFile, func(c *fileRPCConfig) *string { return c.Scheme })
	if scheme == "" {
		if useTLS {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}

	userAgent := firstNonEmpty(envString("TRANSMISSION_USER_AGENT"), fileString(rpcFile, func(c *fileRPCConfig) *string { return c.UserAgent }))
	if userAgent == "" {
		userAgent = "transmission-tui"
	}

	logLevelStr := firstNonEmpty(cli.LogLevel, envString("TRANSMISSION_LOG_LEVEL"), fileLogLevel(file))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := zerolog.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		level = zerolog.InfoLevel
	}

	logFile := firstNonEmpty(cli.LogFile, envString("TRANSMISSION_LOG_FILE"), fileLogFile(file))

	return AppConfig{
		RPC: ConnectionConfig{
			Endpoint:           buildEndpoint(url, scheme, host, port, path2),
			Username:           username,
			Password:           password,
			UserAgent:          userAgent,
			Timeout:            time.Duration(timeoutSecs * float64(time.Second)),
			InsecureSkipVerify: !verifySSL,
		},
		PollInterval: time.Duration(pollSecs * float64(time.Second)),
		LogLevel:     level,
		LogFile:      logFile,
		ConfigPath:   path,
	}, nil
}

func buildEndpoint(url, scheme, host string, port uint16, path string) string {
	if url != "" {
		return url
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, host, port, path)
}

// resolveConfigPath mirrors original_source/src/config.rs's
// load_file_config search order: explicit flag, then env var, then the
// platform config directory under transmission-tui/config.yaml, then the
// legacy flat transmission-tui.yaml.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("TRANSMISSION_TUI_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	modern := filepath.Join(dir, "transmission-tui", "config.yaml")
	if fileExists(modern) {
		return modern
	}
	legacy := filepath.Join(dir, "transmission-tui.yaml")
	if fileExists(legacy) {
		return legacy
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func loadFileConfig(path string) (*fileConfig, error) {
	if path == "" || !fileExists(path) {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

func fileLogLevel(f *fileConfig) string {
	if f == nil || f.LogLevel == nil {
		return ""
	}
	return *f.LogLevel
}

func fileLogFile(f *fileConfig) string {
	if f == nil || f.LogFile == nil {
		return ""
	}
	return *f.LogFile
}

func fileString(c *fileRPCConfig, get func(*fileRPCConfig) *string) string {
	if c == nil {
		return ""
	}
	if p := get(c); p != nil {
		return *p
	}
	return ""
}

func fileUint16(c *fileRPCConfig, get func(*fileRPCConfig) *uint16) uint16 {
	if c == nil {
		return 0
	}
	if p := get(c); p != nil {
		return *p
	}
	return 0
}

func fileFloat(c *fileRPCConfig, get func(*fileRPCConfig) *float64) float64 {
	if c == nil {
		return 0
	}
	if p := get(c); p != nil {
		return *p
	}
	return 0
}

func fileBool(c *fileRPCConfig, get func(*fileRPCConfig) *bool) *bool {
	if c == nil {
		return nil
	}
	return get(c)
}

func envString(name string) string { return os.Getenv(name) }

func envFloat(name string) *float64 {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

// floatPtrOrZero unwraps an optional float for callers that only need the
// "skip if unset" semantics of firstNonZeroFloat, not full nil-vs-zero
// disambiguation.
func floatPtrOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func envUint16(name string) uint16 {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 16)
	if err != nil {
		return 0
	}
	return uint16(n)
}

func envBool(name string) *bool {
	v := strings.ToLower(os.Getenv(name))
	switch v {
	case "1", "true", "yes", "on":
		b := true
		return &b
	case "0", "false", "no", "off":
		b := false
		return &b
	default:
		return nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZeroUint16(values ...uint16) uint16 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonZeroFloat(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstSetFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// boolWithDefault returns the first non-nil value in priority order, or
// def if every value is nil.
func boolWithDefault(def bool, values ...*bool) bool {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return def
}

// RunConfigWatcher is the config-watcher goroutine of SPEC_FULL.md §2/§5:
// it never touches UI or RPC state directly, it only ever writes a
// ReconfigureCommand to the worker's command channel after the
// configuration file changes on disk.
func RunConfigWatcher(ctx context.Context, cli CLIOptions, logger zerolog.Logger, commands chan<- Command) {
	path := resolveConfigPath(cli.ConfigPath)
	if path == "" {
		return
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error().Err(err).Msg("failed to start config watcher")
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		logger.Error().Err(err).Str("dir", dir).Msg("failed to watch config directory")
		return
	}

	reload := func() {
		cfg, err := BuildConfig(cli)
		if err != nil {
			logger.Error().Err(err).Msg("failed to reload configuration")
			return
		}
		select {
		case commands <- ReconfigureCommand{Config: cfg.RPC}:
		case <-ctx.Done():
		}
	}

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(300*time.Millisecond, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error().Err(err).Msg("config watcher error")
		}
	}
}
