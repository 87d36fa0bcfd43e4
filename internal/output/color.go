package output

import (
	"fmt"
	"io"
	"os"
)

// Color modes accepted by --color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ResolveColorMode decides whether to style output. "auto" (or "") defers
// to isTTY; any other unknown mode is an error.
func ResolveColorMode(colorMode string, isTTY bool) (bool, error) {
	switch colorMode {
	case ColorNever:
		return false, nil
	case ColorAlways:
		return true, nil
	case ColorAuto, "":
		return isTTY, nil
	default:
		return false, NewUserError(fmt.Sprintf("invalid --color value %q (want auto, always or never)", colorMode))
	}
}

// IsTTY reports whether writer is a terminal.
func IsTTY(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
