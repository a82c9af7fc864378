package hyper

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/hyperkey/pkg/karabiner"
)

// Kind identifies which builder resolves an [Action].
type Kind int

// Action kinds. The zero Kind marks an unset Action.
const (
	KindManipulator Kind = iota + 1 // hand-written manipulator
	KindApp                         // open or focus an application
	KindWindow                      // Rectangle window command
)

// String returns a short lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case KindManipulator:
		return "keys"
	case KindApp:
		return "app"
	case KindWindow:
		return "window"
	default:
		return "unset"
	}
}

// Action is what a sub-key does while hyper is held.
//
// It is a closed variant: build it with [Keys], [App] or [Window]. The zero
// Action is invalid and rejected by [Validate].
type Action struct {
	kind        Kind
	manipulator karabiner.Manipulator
	app         string
	window      WindowCommand
}

// Keys wraps a hand-written manipulator, for cases no builder covers such as
// media keys or arrow emulation. Only the fields describing the effect are
// relevant; the expander fills in type, from and the hyper guard.
func Keys(m karabiner.Manipulator) Action {
	return Action{kind: KindManipulator, manipulator: m}
}

// Emit is shorthand for Keys with a single key event.
func Emit(code string, modifiers ...string) Action {
	return Keys(karabiner.Manipulator{To: []karabiner.Event{karabiner.Key(code, modifiers...)}})
}

// App opens or focuses the named application.
func App(name string) Action {
	return Action{kind: KindApp, app: name}
}

// Window runs a Rectangle window command.
func Window(cmd WindowCommand) Action {
	return Action{kind: KindWindow, window: cmd}
}

// Kind returns the action's kind.
func (a Action) Kind() Kind { return a.kind }

// AppName returns the application name of a KindApp action.
func (a Action) AppName() string { return a.app }

// WindowCommand returns the command of a KindWindow action.
func (a Action) WindowCommand() WindowCommand { return a.window }

// Manipulator returns the wrapped manipulator of a KindManipulator action.
func (a Action) Manipulator() karabiner.Manipulator { return a.manipulator }

// Resolve turns the action into a manipulator description. It panics on the
// zero Action.
func (a Action) Resolve() karabiner.Manipulator {
	switch a.kind {
	case KindManipulator:
		return Passthrough(a.manipulator)
	case KindApp:
		return OpenApp(a.app)
	case KindWindow:
		return Rectangle(a.window)
	default:
		panic(fmt.Sprintf("hyper: cannot resolve action of kind %d", a.kind))
	}
}

// Label is a short human-readable summary used by listings and cheat sheets.
func (a Action) Label() string {
	switch a.kind {
	case KindApp:
		return a.app
	case KindWindow:
		return "Window: " + a.window.String()
	case KindManipulator:
		if a.manipulator.Description != "" {
			return a.manipulator.Description
		}
		return eventsLabel(a.manipulator.To)
	default:
		return ""
	}
}

// OpenApp returns a manipulator launching or focusing name through macOS
// open(1). Repeated invocations focus the running application.
func OpenApp(name string) karabiner.Manipulator {
	return open("-a " + shellQuote(name+".app"))
}

func open(what string) karabiner.Manipulator {
	return karabiner.Manipulator{
		Description: "Open " + what,
		To:          []karabiner.Event{karabiner.Shell("open " + what)},
	}
}

// Rectangle returns a manipulator running cmd through Rectangle's URL scheme.
// It panics on the zero WindowCommand.
func Rectangle(cmd WindowCommand) karabiner.Manipulator {
	if cmd.IsZero() {
		panic("hyper: zero WindowCommand")
	}
	return karabiner.Manipulator{
		Description: "Window: " + cmd.name,
		To: []karabiner.Event{
			karabiner.Shell("open -g rectangle://execute-action?name=" + cmd.name),
		},
	}
}

// Passthrough returns m unchanged.
func Passthrough(m karabiner.Manipulator) karabiner.Manipulator {
	return m
}

// shellQuote wraps s in single quotes for /bin/sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func eventsLabel(events []karabiner.Event) string {
	parts := make([]string, 0, len(events))
	for _, e := range events {
		switch {
		case e.KeyCode != "":
			parts = append(parts, strings.Join(append(slices.Clone(e.Modifiers), e.KeyCode), "+"))
		case e.ShellCommand != "":
			parts = append(parts, e.ShellCommand)
		case e.SetVariable != nil:
			parts = append(parts, fmt.Sprintf("%s=%d", e.SetVariable.Name, e.SetVariable.Value))
		}
	}
	return strings.Join(parts, ", ")
}
