package flagparse

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/diomeh/dsu/pkg/buildinfo"
)

// cliFlags holds pointers to all possible command-line flags.
// Fields are pointers so we can distinguish between "not registered for this command" (nil)
// and "registered but not set by user" (non-nil pointer to zero value).
type cliFlags struct {
	// Global
	LogLevel *string
	Verbose  *bool
	Quiet    *bool
	Metrics  *bool

	// Shared: Backup / Restore / Cln / Xtract
	DryRun *bool

	// Shared: Backup / Restore
	Workers      *int
	BufferSizeKB *int
	RetryCount   *int
	RetryWait    *int

	// Backup specific
	TimestampLayout *string

	// Cln specific
	Recursive *bool
	Depth     *int
	Force     *string

	// Hog specific
	HumanReadable *bool
	Limit         *int

	// Xtract specific
	Overwrite *string
	Format    *string

	// Init specific
	Default   *bool
	InitForce *bool
}

// positionals describes the arguments a command accepts after its name.
type positionals struct {
	names    []string
	required int
	variadic bool
}

var commandPositionals = map[Command]positionals{
	Backup:  {names: []string{"source", "target"}, required: 1},
	Restore: {names: []string{"source", "target"}, required: 1},
	Cln:     {names: []string{"paths"}, variadic: true},
	Hog:     {names: []string{"dir"}},
	Xtract:  {names: []string{"archive", "target"}, required: 1},
	Copy:    {},
	Paste:   {},
	Init:    {},
}

var commandDescriptions = map[Command]string{
	Backup:  "Create a timestamped backup of a file or directory.",
	Restore: "Restore a file or directory from a timestamped backup.",
	Cln:     "Remove non-ASCII characters from file names.",
	Copy:    "Copy standard input to the clipboard.",
	Hog:     "Print the disk usage of the entries of a directory.",
	Paste:   "Paste the clipboard to standard output.",
	Xtract:  "Extract an archive.",
	Init:    "Write the configuration file, keeping existing settings unless -default is given.",
}

func registerGlobalFlags(fs *flag.FlagSet, f *cliFlags) {
	f.LogLevel = fs.String("log-level", "info", "Set the logging level: 'debug', 'notice', 'info', 'warn', 'error'.")
	f.Verbose = new(bool)
	fs.BoolVar(f.Verbose, "v", false, "Show debug logs (shorthand for -log-level debug).")
	fs.BoolVar(f.Verbose, "verbose", false, "Show debug logs (shorthand for -log-level debug).")
	f.Quiet = new(bool)
	fs.BoolVar(f.Quiet, "quiet", false, "Only log warnings and errors.")
	fs.BoolVar(f.Quiet, "q", false, "Shorthand for -quiet.")
	f.Metrics = fs.Bool("metrics", false, "Print file and byte counters when the operation finishes.")
}

func registerDryRunFlags(fs *flag.FlagSet, f *cliFlags) {
	f.DryRun = new(bool)
	fs.BoolVar(f.DryRun, "dry-run", false, "Only print actions, without performing them.")
	fs.BoolVar(f.DryRun, "n", false, "Shorthand for -dry-run.")
}

func registerCopyFlags(fs *flag.FlagSet, f *cliFlags) {
	f.Workers = fs.Int("workers", 0, "Number of worker goroutines for file copies.")
	f.BufferSizeKB = fs.Int("buffer-size-kb", 0, "Size of the I/O buffer in kilobytes for file copies.")
	f.RetryCount = fs.Int("retry-count", 0, "Number of retries for failed file copies.")
	f.RetryWait = fs.Int("retry-wait", 0, "Seconds to wait between retries.")
}

func registerBackupFlags(fs *flag.FlagSet, f *cliFlags) {
	registerDryRunFlags(fs, f)
	registerCopyFlags(fs, f)
	f.TimestampLayout = fs.String("timestamp-layout", "", "Go time layout of the backup timestamp (must not contain '.').")
}

func registerRestoreFlags(fs *flag.FlagSet, f *cliFlags) {
	registerDryRunFlags(fs, f)
	registerCopyFlags(fs, f)
}

func registerClnFlags(fs *flag.FlagSet, f *cliFlags) {
	registerDryRunFlags(fs, f)
	f.Recursive = new(bool)
	fs.BoolVar(f.Recursive, "recursive", true, "Clean directories recursively.")
	fs.BoolVar(f.Recursive, "r", true, "Shorthand for -recursive.")
	f.Depth = new(int)
	fs.IntVar(f.Depth, "depth", 1, "Recurse depth (0 = unlimited).")
	fs.IntVar(f.Depth, "d", 1, "Shorthand for -depth.")
	f.Force = new(string)
	fs.StringVar(f.Force, "force", "auto", "Overwrite existing files: 'y', 'n', or 'auto' (ask when interactive).")
	fs.StringVar(f.Force, "f", "auto", "Shorthand for -force.")
}

func registerHogFlags(fs *flag.FlagSet, f *cliFlags) {
	f.HumanReadable = new(bool)
	fs.BoolVar(f.HumanReadable, "human-readable", false, "Print sizes in IEC units (KiB, MiB, ...).")
	fs.BoolVar(f.HumanReadable, "H", false, "Shorthand for -human-readable.")
	f.Limit = new(int)
	fs.IntVar(f.Limit, "limit", 10, "Number of entries to show (0 = all).")
	fs.IntVar(f.Limit, "n", 10, "Shorthand for -limit.")
	f.Workers = fs.Int("workers", 0, "Number of worker goroutines for the directory walk.")
}

func registerXtractFlags(fs *flag.FlagSet, f *cliFlags) {
	registerDryRunFlags(fs, f)
	f.Overwrite = fs.String("overwrite", "never", "Overwrite behavior: 'always', 'never', or 'if-newer'.")
	f.Format = fs.String("format", "", "Archive format, detected when empty: 'zip', 'tar', 'tar.gz', 'tar.zst', 'gz', 'zst'.")
	f.BufferSizeKB = fs.Int("buffer-size-kb", 0, "Size of the I/O buffer in kilobytes.")
}

func registerInitFlags(fs *flag.FlagSet, f *cliFlags) {
	registerDryRunFlags(fs, f)
	registerCopyFlags(fs, f)
	f.TimestampLayout = fs.String("timestamp-layout", "", "Go time layout of the backup timestamp (must not contain '.').")
	f.Overwrite = fs.String("overwrite", "never", "Default overwrite behavior of xtract: 'always', 'never', or 'if-newer'.")
	f.Default = fs.Bool("default", false, "Reset the configuration file to default values.")
	f.InitForce = fs.Bool("force", false, "Reset an existing configuration file without asking.")
}

// aliases maps shorthand flag names to the key they are reported under.
var aliases = map[string]string{
	"v": "verbose",
	"q": "quiet",
	"n": "dry-run",
	"r": "recursive",
	"d": "depth",
	"f": "force",
	"H": "human-readable",
}

// Parse parses the provided arguments (usually os.Args[1:]) and returns the command and flag map.
// Only flags set by the user and positional arguments that were given appear in the map.
func Parse(args []string) (Command, map[string]any, error) {
	return parse(args, os.Stderr)
}

func parse(args []string, output io.Writer) (Command, map[string]any, error) {
	// Handle top-level help
	// If no arguments provided, print help and exit.
	if len(args) == 0 {
		printTopLevelUsage(output)
		return None, nil, nil
	}

	cmdStr := strings.ToLower(args[0])
	if cmdStr == "help" || cmdStr == "-h" || cmdStr == "-help" || cmdStr == "--help" {
		printTopLevelUsage(output)
		return None, nil, nil
	}

	command, err := ParseCommand(cmdStr)
	if err != nil {
		return None, nil, err
	}
	if command == Version {
		return command, nil, nil
	}

	f := &cliFlags{}
	fs := flag.NewFlagSet(command.String(), flag.ContinueOnError)
	fs.SetOutput(output)
	registerGlobalFlags(fs, f)

	switch command {
	case Backup:
		registerBackupFlags(fs, f)
	case Restore:
		registerRestoreFlags(fs, f)
	case Cln:
		registerClnFlags(fs, f)
	case Hog:
		registerHogFlags(fs, f)
	case Xtract:
		registerXtractFlags(fs, f)
	case Init:
		registerInitFlags(fs, f)
	}

	// Custom usage for the subcommand
	fs.Usage = func() {
		printSubcommandUsage(command, commandDescriptions[command], fs)
	}

	args, err = parseInterspersed(fs, args[1:])
	if err != nil {
		return command, nil, err
	}

	flagMap, err := flagsToMap(command, fs, f)
	if err != nil {
		return command, nil, err
	}
	if err := addPositionals(command, flagMap, args); err != nil {
		return command, nil, err
	}
	return command, flagMap, nil
}

// parseInterspersed lets flags follow positional arguments ("backup src -n"),
// which flag.FlagSet.Parse alone does not allow.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		// A literal "--" ends flag parsing for good.
		if len(args) > len(rest) && args[len(args)-len(rest)-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func addPositionals(command Command, flagMap map[string]any, args []string) error {
	pos := commandPositionals[command]
	if len(args) < pos.required {
		return fmt.Errorf("%s: missing required argument <%s>", command, pos.names[len(args)])
	}
	if pos.variadic {
		if len(args) > 0 {
			flagMap[pos.names[0]] = args
		}
		return nil
	}
	if len(args) > len(pos.names) {
		return fmt.Errorf("%s: unexpected argument %q", command, args[len(pos.names)])
	}
	for i, arg := range args {
		flagMap[pos.names[i]] = arg
	}
	return nil
}

func flagsToMap(c Command, fs *flag.FlagSet, f *cliFlags) (map[string]any, error) {
	// Create a map of the flags that were explicitly set by the user, along with their values.
	// This map is used to selectively override the base configuration.
	usedFlags := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) {
		name := fl.Name
		if alias, ok := aliases[name]; ok {
			name = alias
		}
		// Hog's -n is the entry limit, not dry-run.
		if c == Hog && fl.Name == "n" {
			name = "limit"
		}
		usedFlags[name] = true
	})

	flagMap := make(map[string]any)

	addIfUsed(flagMap, usedFlags, "log-level", f.LogLevel)
	addIfUsed(flagMap, usedFlags, "verbose", f.Verbose)
	addIfUsed(flagMap, usedFlags, "quiet", f.Quiet)
	addIfUsed(flagMap, usedFlags, "metrics", f.Metrics)
	addIfUsed(flagMap, usedFlags, "dry-run", f.DryRun)

	addIfUsed(flagMap, usedFlags, "workers", f.Workers)
	addIfUsed(flagMap, usedFlags, "buffer-size-kb", f.BufferSizeKB)
	addIfUsed(flagMap, usedFlags, "retry-count", f.RetryCount)
	addIfUsed(flagMap, usedFlags, "retry-wait", f.RetryWait)
	addIfUsed(flagMap, usedFlags, "timestamp-layout", f.TimestampLayout)

	addIfUsed(flagMap, usedFlags, "recursive", f.Recursive)
	addIfUsed(flagMap, usedFlags, "depth", f.Depth)
	addIfUsed(flagMap, usedFlags, "force", f.Force)

	addIfUsed(flagMap, usedFlags, "human-readable", f.HumanReadable)
	addIfUsed(flagMap, usedFlags, "limit", f.Limit)

	addIfUsed(flagMap, usedFlags, "overwrite", f.Overwrite)
	addIfUsed(flagMap, usedFlags, "format", f.Format)

	addIfUsed(flagMap, usedFlags, "default", f.Default)
	addIfUsed(flagMap, usedFlags, "force", f.InitForce)

	return flagMap, nil
}

// addIfUsed adds the value of ptr to flagMap if ptr is not nil and the flag was set.
func addIfUsed[T any](flagMap map[string]any, usedFlags map[string]bool, name string, ptr *T) {
	if ptr != nil && usedFlags[name] {
		flagMap[name] = *ptr
	}
}

// printTopLevelUsage prints the main help message.
func printTopLevelUsage(w io.Writer) {
	execName := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "%s(%s) ", buildinfo.Name, buildinfo.Version)
	fmt.Fprintf(w, "%s\n\n", buildinfo.Description)
	fmt.Fprintf(w, "Usage: %s <command> [flags] [args]\n\n", execName)
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  backup      Create a timestamped backup of a file or directory\n")
	fmt.Fprintf(w, "  restore     Restore a file or directory from a timestamped backup\n")
	fmt.Fprintf(w, "  cln         Remove non-ASCII characters from file names\n")
	fmt.Fprintf(w, "  copy        Copy standard input to the clipboard\n")
	fmt.Fprintf(w, "  hog         Print the disk usage of a directory\n")
	fmt.Fprintf(w, "  paste       Paste the clipboard to standard output\n")
	fmt.Fprintf(w, "  xtract      Extract an archive\n")
	fmt.Fprintf(w, "  init        Write the configuration file\n")
	fmt.Fprintf(w, "  version     Print the application version\n")
	fmt.Fprintf(w, "\nRun '%s <command> -help' for more information on a command.\n", execName)
}

// printSubcommandUsage prints the help message for a specific subcommand.
func printSubcommandUsage(command Command, desc string, fs *flag.FlagSet) {
	execName := filepath.Base(os.Args[0])
	var args []string
	pos := commandPositionals[command]
	for i, name := range pos.names {
		arg := "<" + name + ">"
		if pos.variadic {
			arg = "[" + name + "...]"
		} else if i >= pos.required {
			arg = "[" + name + "]"
		}
		args = append(args, arg)
	}

	fmt.Fprintf(fs.Output(), "%s(%s) ", buildinfo.Name, buildinfo.Version)
	fmt.Fprintf(fs.Output(), "%s\n\n", buildinfo.Description)
	fmt.Fprintf(fs.Output(), "Usage of the %s command: %s %s [flags] %s\n\n", command, execName, command, strings.Join(args, " "))
	fmt.Fprintf(fs.Output(), "%s\n\n", desc)
	fmt.Fprintf(fs.Output(), "Flags:\n")
	fs.PrintDefaults()
}
