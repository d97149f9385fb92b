package pathclean

import (
	"fmt"
	"strings"

	"github.com/diomeh/dsu/pkg/util"
)

// Force decides what happens when a cleaned name is already taken.
type Force int

const (
	// ForceAuto asks on an interactive terminal and skips otherwise.
	ForceAuto Force = iota
	// ForceYes overwrites the existing entry.
	ForceYes
	// ForceNo leaves both entries untouched.
	ForceNo
)

var forceToString = map[Force]string{ForceAuto: "auto", ForceYes: "y", ForceNo: "n"}
var stringToForce map[string]Force

func init() {
	stringToForce = util.InvertMap(forceToString)
	stringToForce["yes"] = ForceYes
	stringToForce["no"] = ForceNo
}

func (f Force) String() string {
	if str, ok := forceToString[f]; ok {
		return str
	}
	return fmt.Sprintf("unknown_force(%d)", f)
}

func ParseForce(s string) (Force, error) {
	if f, ok := stringToForce[strings.ToLower(s)]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("invalid force value: %q. Must be 'y', 'n', or 'auto'", s)
}
