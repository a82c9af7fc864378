package hyper

import (
	"slices"

	"github.com/matzehuels/hyperkey/pkg/errors"
)

// WindowCommand is a Rectangle window-management action.
//
// The set is closed: the only valid values are the Window* variables below
// and the results of [ParseWindowCommand]. Because the name field is
// unexported, a command outside the set cannot be spelled in Go source.
type WindowCommand struct {
	name string
}

// Rectangle actions, named after its execute-action URL scheme.
var (
	WindowLeftHalf          = WindowCommand{"left-half"}
	WindowRightHalf         = WindowCommand{"right-half"}
	WindowCenterHalf        = WindowCommand{"center-half"}
	WindowTopHalf           = WindowCommand{"top-half"}
	WindowBottomHalf        = WindowCommand{"bottom-half"}
	WindowTopLeft           = WindowCommand{"top-left"}
	WindowTopRight          = WindowCommand{"top-right"}
	WindowBottomLeft        = WindowCommand{"bottom-left"}
	WindowBottomRight       = WindowCommand{"bottom-right"}
	WindowFirstThird        = WindowCommand{"first-third"}
	WindowCenterThird       = WindowCommand{"center-third"}
	WindowLastThird         = WindowCommand{"last-third"}
	WindowFirstTwoThirds    = WindowCommand{"first-two-thirds"}
	WindowLastTwoThirds     = WindowCommand{"last-two-thirds"}
	WindowMaximize          = WindowCommand{"maximize"}
	WindowAlmostMaximize    = WindowCommand{"almost-maximize"}
	WindowMaximizeHeight    = WindowCommand{"maximize-height"}
	WindowSmaller           = WindowCommand{"smaller"}
	WindowLarger            = WindowCommand{"larger"}
	WindowCenter            = WindowCommand{"center"}
	WindowRestore           = WindowCommand{"restore"}
	WindowNextDisplay       = WindowCommand{"next-display"}
	WindowPreviousDisplay   = WindowCommand{"previous-display"}
	WindowMoveLeft          = WindowCommand{"move-left"}
	WindowMoveRight         = WindowCommand{"move-right"}
	WindowMoveUp            = WindowCommand{"move-up"}
	WindowMoveDown          = WindowCommand{"move-down"}
	WindowFirstFourth       = WindowCommand{"first-fourth"}
	WindowSecondFourth      = WindowCommand{"second-fourth"}
	WindowThirdFourth       = WindowCommand{"third-fourth"}
	WindowLastFourth        = WindowCommand{"last-fourth"}
	WindowFirstThreeFourths = WindowCommand{"first-three-fourths"}
	WindowLastThreeFourths  = WindowCommand{"last-three-fourths"}
	WindowTileAll           = WindowCommand{"tile-all"}
	WindowCascadeAll        = WindowCommand{"cascade-all"}
)

// windowCommands lists every command in declaration order.
var windowCommands = []WindowCommand{
	WindowLeftHalf, WindowRightHalf, WindowCenterHalf, WindowTopHalf, WindowBottomHalf,
	WindowTopLeft, WindowTopRight, WindowBottomLeft, WindowBottomRight,
	WindowFirstThird, WindowCenterThird, WindowLastThird, WindowFirstTwoThirds, WindowLastTwoThirds,
	WindowMaximize, WindowAlmostMaximize, WindowMaximizeHeight, WindowSmaller, WindowLarger,
	WindowCenter, WindowRestore, WindowNextDisplay, WindowPreviousDisplay,
	WindowMoveLeft, WindowMoveRight, WindowMoveUp, WindowMoveDown,
	WindowFirstFourth, WindowSecondFourth, WindowThirdFourth, WindowLastFourth,
	WindowFirstThreeFourths, WindowLastThreeFourths, WindowTileAll, WindowCascadeAll,
}

// String returns the Rectangle action name.
func (c WindowCommand) String() string { return c.name }

// IsZero reports whether c is the zero value, which names no command.
func (c WindowCommand) IsZero() bool { return c.name == "" }

// WindowCommands returns all supported commands.
func WindowCommands() []WindowCommand {
	return slices.Clone(windowCommands)
}

// ParseWindowCommand resolves a Rectangle action name read from a layer file
// or the command line. Unknown names fail with INVALID_WINDOW_COMMAND.
func ParseWindowCommand(name string) (WindowCommand, error) {
	for _, c := range windowCommands {
		if c.name == name {
			return c, nil
		}
	}
	return WindowCommand{}, errors.New(errors.ErrCodeInvalidWindowCommand, "unknown window command: %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (c WindowCommand) MarshalText() ([]byte, error) {
	if c.IsZero() {
		return nil, errors.New(errors.ErrCodeInvalidWindowCommand, "empty window command")
	}
	return []byte(c.name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler via [ParseWindowCommand].
func (c *WindowCommand) UnmarshalText(text []byte) error {
	parsed, err := ParseWindowCommand(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
