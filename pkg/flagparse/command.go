package flagparse

import (
	"fmt"

	"github.com/diomeh/dsu/pkg/util"
)

// Command defines the subcommand to execute.
type Command int

const (
	None Command = iota
	Backup
	Restore
	Cln
	Copy
	Hog
	Paste
	Xtract
	Init
	Version
)

var commandToString = map[Command]string{
	None:    "none",
	Backup:  "backup",
	Restore: "restore",
	Cln:     "cln",
	Copy:    "copy",
	Hog:     "hog",
	Paste:   "paste",
	Xtract:  "xtract",
	Init:    "init",
	Version: "version",
}

var stringToCommand map[string]Command

func init() {
	stringToCommand = util.InvertMap(commandToString)
}

func (c Command) String() string {
	if str, ok := commandToString[c]; ok {
		return str
	}
	return fmt.Sprintf("unknown_command(%d)", c)
}

func ParseCommand(s string) (Command, error) {
	if command, ok := stringToCommand[s]; ok && command != None {
		return command, nil
	}
	return None, fmt.Errorf("invalid command: %q. Must be 'backup', 'restore', 'cln', 'copy', 'hog', 'paste', 'xtract', 'init', or 'version'", s)
}
