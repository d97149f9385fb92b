package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/diomeh/dsu/pkg/backupname"
	"github.com/diomeh/dsu/pkg/buildinfo"
	"github.com/diomeh/dsu/pkg/flagparse"
	"github.com/diomeh/dsu/pkg/pathclean"
	"github.com/diomeh/dsu/pkg/pathcompression"
	"github.com/diomeh/dsu/pkg/plog"
	"github.com/diomeh/dsu/pkg/util"
)

// ConfigFileName is the name of the configuration file.
const ConfigFileName = "dsu.config.json"

// ConfigPathEnv names the environment variable that overrides the config file location.
const ConfigPathEnv = "DSU_CONFIG"

type BackupConfig struct {
	TimestampLayout string `json:"timestampLayout" comment:"Go time layout of the timestamp in backup names. Must not contain '.'. Default is 20060102_150405."`
}

type CopyConfig struct {
	Workers          int `json:"workers"`
	BufferSizeKB     int `json:"bufferSizeKB" comment:"Size of the I/O buffer in kilobytes for file copies and extraction. Default is 256 (256KB)."`
	RetryCount       int `json:"retryCount"`
	RetryWaitSeconds int `json:"retryWaitSeconds"`
}

type ClnConfig struct {
	Recursive bool   `json:"recursive"`
	Depth     int    `json:"depth"`
	Force     string `json:"force"`
}

type HogConfig struct {
	Limit         int  `json:"limit"`
	HumanReadable bool `json:"humanReadable"`
	Workers       int  `json:"workers"`
}

type XtractConfig struct {
	Overwrite            string `json:"overwrite"`
	ModTimeWindowSeconds int    `json:"modTimeWindowSeconds" comment:"Time window in seconds in which an archived file is not considered newer. Default is 1s."`
	Format               string `json:"-"` // Per-run override, empty means detect.
}

type RuntimeConfig struct {
	DryRun bool
	Quiet  bool
}

// ArgsConfig holds the positional arguments of a run.
type ArgsConfig struct {
	Source  string
	Target  string
	Archive string
	Dir     string
	Paths   []string
}

type Config struct {
	Version  string        `json:"version"`
	LogLevel string        `json:"logLevel"`
	Metrics  bool          `json:"metrics"`
	Runtime  RuntimeConfig `json:"-"` // Never added to config file
	Args     ArgsConfig    `json:"-"` // Never added to config file
	Backup   BackupConfig  `json:"backup"`
	Copy     CopyConfig    `json:"copy"`
	Cln      ClnConfig     `json:"cln"`
	Hog      HogConfig     `json:"hog"`
	Xtract   XtractConfig  `json:"xtract"`
}

// NewDefault creates and returns a Config struct with sensible default values.
func NewDefault() Config {
	return Config{
		Version:  buildinfo.Version,
		LogLevel: "info",
		Metrics:  false,
		Backup: BackupConfig{
			TimestampLayout: backupname.DefaultLayout,
		},
		Copy: CopyConfig{
			Workers:          4,   // Safe for HDDs (prevents thrashing), decent for SSDs.
			BufferSizeKB:     256, // Keep it between 64KB-4MB
			RetryCount:       3,
			RetryWaitSeconds: 1,
		},
		Cln: ClnConfig{
			Recursive: true,
			Depth:     1,
			Force:     pathclean.ForceAuto.String(),
		},
		Hog: HogConfig{
			Limit:         10,
			HumanReadable: false,
			Workers:       0, // Walker default.
		},
		Xtract: XtractConfig{
			Overwrite:            pathcompression.OverwriteNever.String(),
			ModTimeWindowSeconds: 1,
		},
	}
}

// DefaultPath returns the config file location: $DSU_CONFIG if set, otherwise
// dsu/dsu.config.json below the user config directory.
func DefaultPath() (string, error) {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return util.ExpandPath(p)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(dir, buildinfo.Name, ConfigFileName), nil
}

// Load reads the configuration at path, or at DefaultPath when path is empty.
// If the file doesn't exist, it returns the default config without an error.
// If the file exists but fails to parse, it returns an error and a zero-value config.
func Load(path string) (Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return Config{}, err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefault(), nil // Config file doesn't exist, which is a normal case.
		}
		return Config{}, fmt.Errorf("error opening config file %s: %w", path, err)
	}
	defer file.Close()

	plog.Debug("Loading configuration", "path", path)
	// Start with default values, then overwrite with the file's content.
	// This makes the config loading resilient to missing fields in the JSON file.
	config := NewDefault()
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return Config{}, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	// NOTE: if config.Version differs from the app version a migration step goes here.
	config.Version = buildinfo.Version
	return config, nil
}

// Generate creates or overwrites the config file at path.
func Generate(path string, configToGenerate Config) error {
	jsonData, err := json.MarshalIndent(configToGenerate, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config to JSON: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), util.UserWritableDirPerms); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, jsonData, util.UserWritableFilePerms); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	plog.Info("Successfully saved config file", "path", path)
	return nil
}

// Validate checks the configuration for values the planner cannot use.
func (c *Config) Validate() error {
	if !plog.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid logLevel %q. Must be 'debug', 'notice', 'info', 'warn', or 'error'", c.LogLevel)
	}

	if err := backupname.ValidateLayout(c.Backup.TimestampLayout); err != nil {
		return fmt.Errorf("backup.timestampLayout: %w", err)
	}

	if c.Copy.Workers < 1 {
		return fmt.Errorf("copy.workers must be at least 1")
	}
	if c.Copy.BufferSizeKB <= 0 {
		return fmt.Errorf("copy.bufferSizeKB must be greater than 0")
	}
	if c.Copy.RetryCount < 0 {
		return fmt.Errorf("copy.retryCount cannot be negative")
	}
	if c.Copy.RetryWaitSeconds < 0 {
		return fmt.Errorf("copy.retryWaitSeconds cannot be negative")
	}

	if c.Cln.Depth < 0 {
		return fmt.Errorf("cln.depth cannot be negative")
	}
	if _, err := pathclean.ParseForce(c.Cln.Force); err != nil {
		return fmt.Errorf("cln.force: %w", err)
	}

	if c.Hog.Limit < 0 {
		return fmt.Errorf("hog.limit cannot be negative")
	}
	if c.Hog.Workers < 0 {
		return fmt.Errorf("hog.workers cannot be negative")
	}

	if _, err := pathcompression.ParseOverwriteBehavior(c.Xtract.Overwrite); err != nil {
		return fmt.Errorf("xtract.overwrite: %w", err)
	}
	if c.Xtract.Format != "" {
		if _, err := pathcompression.ParseFormat(c.Xtract.Format); err != nil {
			return fmt.Errorf("xtract format: %w", err)
		}
	}
	if c.Xtract.ModTimeWindowSeconds < 0 {
		return fmt.Errorf("xtract.modTimeWindowSeconds cannot be negative")
	}
	return nil
}

// LogSummary logs the settings relevant to command at debug level.
func (c *Config) LogSummary(command flagparse.Command) {
	logArgs := []any{
		"command", command,
		"log_level", c.LogLevel,
		"dry_run", c.Runtime.DryRun,
		"quiet", c.Runtime.Quiet,
		"metrics", c.Metrics,
	}
	switch command {
	case flagparse.Backup, flagparse.Restore:
		logArgs = append(logArgs,
			"source", c.Args.Source,
			"target", c.Args.Target,
			"timestamp_layout", c.Backup.TimestampLayout,
			"workers", c.Copy.Workers,
			"buffer_size_kb", c.Copy.BufferSizeKB,
			"retry", fmt.Sprintf("%d (wait %ds)", c.Copy.RetryCount, c.Copy.RetryWaitSeconds),
		)
	case flagparse.Cln:
		logArgs = append(logArgs,
			"paths", c.Args.Paths,
			"recursive", c.Cln.Recursive,
			"depth", c.Cln.Depth,
			"force", c.Cln.Force,
		)
	case flagparse.Hog:
		logArgs = append(logArgs,
			"dir", c.Args.Dir,
			"limit", c.Hog.Limit,
			"human_readable", c.Hog.HumanReadable,
		)
	case flagparse.Xtract:
		logArgs = append(logArgs,
			"archive", c.Args.Archive,
			"target", c.Args.Target,
			"overwrite", c.Xtract.Overwrite,
		)
	}
	plog.Debug("Configuration loaded", logArgs...)
}

// MergeConfigWithFlags overlays the configuration values from flags on top of a base
// configuration. It iterates over the setFlags map, which contains only the flags
// explicitly provided by the user on the command line and the positional arguments.
func MergeConfigWithFlags(command flagparse.Command, base Config, setFlags map[string]any) Config {
	merged := base
	// Copy the slice so the base config is never aliased.
	merged.Args.Paths = append([]string(nil), base.Args.Paths...)

	for name, value := range setFlags {
		switch name {
		case "log-level":
			merged.LogLevel = value.(string)
		case "verbose":
			// Applied after the loop so it wins over -log-level.
		case "quiet":
			merged.Runtime.Quiet = value.(bool)
		case "metrics":
			merged.Metrics = value.(bool)
		case "dry-run":
			merged.Runtime.DryRun = value.(bool)

		case "source":
			merged.Args.Source = value.(string)
		case "target":
			merged.Args.Target = value.(string)
		case "archive":
			merged.Args.Archive = value.(string)
		case "dir":
			merged.Args.Dir = value.(string)
		case "paths":
			merged.Args.Paths = value.([]string)

		case "workers":
			switch command {
			case flagparse.Hog:
				merged.Hog.Workers = value.(int)
			default:
				merged.Copy.Workers = value.(int)
			}
		case "buffer-size-kb":
			merged.Copy.BufferSizeKB = value.(int)
		case "retry-count":
			merged.Copy.RetryCount = value.(int)
		case "retry-wait":
			merged.Copy.RetryWaitSeconds = value.(int)
		case "timestamp-layout":
			merged.Backup.TimestampLayout = value.(string)

		case "recursive":
			merged.Cln.Recursive = value.(bool)
		case "depth":
			merged.Cln.Depth = value.(int)
		case "force":
			if command == flagparse.Cln {
				merged.Cln.Force = value.(string)
			}

		case "human-readable":
			merged.Hog.HumanReadable = value.(bool)
		case "limit":
			merged.Hog.Limit = value.(int)

		case "overwrite":
			merged.Xtract.Overwrite = value.(string)
		case "format":
			merged.Xtract.Format = value.(string)
		default:
			plog.Debug("unhandled flag in MergeConfigWithFlags", "flag", name)
		}
	}
	if verbose, _ := setFlags["verbose"].(bool); verbose {
		merged.LogLevel = "debug"
	}
	return merged
}
