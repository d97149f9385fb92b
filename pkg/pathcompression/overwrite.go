package pathcompression

import (
	"fmt"
	"strings"
	"time"

	"github.com/diomeh/dsu/pkg/util"
)

// OverwriteBehavior decides whether an archive entry replaces a file that
// already exists at its destination. The zero value never replaces.
type OverwriteBehavior int

const (
	OverwriteNever OverwriteBehavior = iota
	OverwriteAlways
	// OverwriteIfNewer replaces only files older than the entry by more than
	// the modification time window.
	OverwriteIfNewer
)

var behaviorToString = map[OverwriteBehavior]string{
	OverwriteNever:   "never",
	OverwriteAlways:  "always",
	OverwriteIfNewer: "if-newer",
}

var stringToBehavior map[string]OverwriteBehavior

func init() {
	stringToBehavior = util.InvertMap(behaviorToString)
}

func (ob OverwriteBehavior) String() string {
	if str, ok := behaviorToString[ob]; ok {
		return str
	}
	return fmt.Sprintf("unknown_overwrite_behavior(%d)", ob)
}

func ParseOverwriteBehavior(s string) (OverwriteBehavior, error) {
	if behavior, ok := stringToBehavior[strings.ToLower(s)]; ok {
		return behavior, nil
	}
	return OverwriteNever, fmt.Errorf("invalid overwrite behavior: %q. Must be 'always', 'never', or 'if-newer'", s)
}

// replaces reports whether an entry modified at entryModTime may replace a
// file on disk modified at diskModTime.
func (ob OverwriteBehavior) replaces(entryModTime, diskModTime time.Time, window time.Duration) bool {
	switch ob {
	case OverwriteAlways:
		return true
	case OverwriteIfNewer:
		return entryModTime.Sub(diskModTime) > window
	default:
		return false
	}
}
