package hyper

import (
	"fmt"
	"time"

	"github.com/matzehuels/hyperkey/pkg/errors"
	"github.com/matzehuels/hyperkey/pkg/karabiner"
)

// HyperKeyDescription names the rule defining the hyper key.
const HyperKeyDescription = "Hyper Key (⌃⌥⇧⌘)"

// HyperKey configures the physical key repurposed as hyper.
type HyperKey struct {
	// Key is the key_code that sets VarHyper while held.
	Key string
	// Alone is emitted when Key is tapped without another key. Empty means Key.
	Alone string
	// DisableCommandTab swallows ⌘-Tab to build the habit of using hyper
	// layers for app switching.
	DisableCommandTab bool
}

// DefaultHyperKey returns the semicolon hyper key.
func DefaultHyperKey() HyperKey {
	return HyperKey{Key: "semicolon", Alone: "semicolon", DisableCommandTab: true}
}

// DoubleTap configures the double-tap latch.
type DoubleTap struct {
	// Key is the key tapped twice, passed through on every tap.
	Key string
	// Emit is sent on the second tap.
	Emit string
	// Delay is the window for the second tap.
	Delay time.Duration
}

// DefaultDoubleTap turns a quick double left shift into caps lock.
func DefaultDoubleTap() DoubleTap {
	return DoubleTap{Key: "left_shift", Emit: "caps_lock", Delay: 250 * time.Millisecond}
}

// Variable returns the transient variable set between the two taps.
func (d DoubleTap) Variable() string {
	return d.Key + "_pressed"
}

// Options configures the complete rule list.
type Options struct {
	Hyper     HyperKey
	DoubleTap DoubleTap
	Expand    ExpandOptions
}

// DefaultOptions returns the hyper and double-tap defaults with sub-layer
// variables, so a binding fires only while its trigger key is held.
func DefaultOptions() Options {
	return Options{
		Hyper:     DefaultHyperKey(),
		DoubleTap: DefaultDoubleTap(),
		Expand:    ExpandOptions{Sublayers: true},
	}
}

// Validate checks key codes and the double-tap delay.
func (o Options) Validate() error {
	var errs []error
	for _, code := range []string{o.Hyper.Key, o.DoubleTap.Key, o.DoubleTap.Emit} {
		if err := errors.ValidateKeyCode(code); err != nil {
			errs = append(errs, err)
		}
	}
	if o.Hyper.Alone != "" {
		if err := errors.ValidateKeyCode(o.Hyper.Alone); err != nil {
			errs = append(errs, err)
		}
	}
	if o.DoubleTap.Delay < time.Millisecond {
		errs = append(errs, errors.New(errors.ErrCodeInvalidConfig, "double-tap delay must be at least 1ms, got %s", o.DoubleTap.Delay))
	}
	if o.Hyper.Key == o.DoubleTap.Key {
		errs = append(errs, errors.New(errors.ErrCodeDuplicateKey, "hyper key and double-tap key are both %q", o.Hyper.Key))
	}
	return errors.Join(errs)
}

// Rules returns the complete rule list: the hyper key rule, the double-tap
// rule, then the expanded layers. The two fixed rules always come first and
// in that order, whatever the layers contain.
func Rules(layers []Layer, opts Options) []karabiner.Rule {
	rules := make([]karabiner.Rule, 0, len(layers)+2)
	rules = append(rules, HyperKeyRule(opts.Hyper), DoubleTapRule(opts.DoubleTap))
	return append(rules, Expand(layers, opts.Expand)...)
}

// HyperKeyRule defines the hyper key: holding h.Key sets VarHyper to 1 and
// releasing it sets 0; tapping it alone emits h.Alone.
func HyperKeyRule(h HyperKey) karabiner.Rule {
	alone := h.Alone
	if alone == "" {
		alone = h.Key
	}

	manipulators := []karabiner.Manipulator{{
		Type:         karabiner.TypeBasic,
		Description:  fmt.Sprintf("%s -> Hyper Key", KeySymbol(h.Key)),
		From:         karabiner.From{KeyCode: h.Key},
		To:           []karabiner.Event{karabiner.SetVar(VarHyper, 1)},
		ToAfterKeyUp: []karabiner.Event{karabiner.SetVar(VarHyper, 0)},
		ToIfAlone:    []karabiner.Event{karabiner.Key(alone)},
	}}

	if h.DisableCommandTab {
		manipulators = append(manipulators, karabiner.Manipulator{
			Type:        karabiner.TypeBasic,
			Description: "Disable CMD + Tab to force Hyper Key usage",
			From:        karabiner.FromKeyWith("tab", "left_command"),
			To:          []karabiner.Event{karabiner.Key("tab")},
		})
	}

	return karabiner.Rule{Description: HyperKeyDescription, Manipulators: manipulators}
}

// DoubleTapRule latches d.Emit when d.Key is pressed twice within d.Delay.
//
// The first tap passes d.Key through and sets d.Variable(); a delayed action
// clears it again once the delay expires or another key is pressed. A second
// tap while the variable is set emits d.Emit and clears the variable. The
// second-tap manipulator comes first so Karabiner checks it before the
// first-tap one.
func DoubleTapRule(d DoubleTap) karabiner.Rule {
	v := d.Variable()
	reset := []karabiner.Event{karabiner.SetVar(v, 0)}

	return karabiner.Rule{
		Description: fmt.Sprintf("Double-tap %s -> %s", d.Key, d.Emit),
		Manipulators: []karabiner.Manipulator{
			{
				Type:        karabiner.TypeBasic,
				Description: fmt.Sprintf("%s twice -> %s", d.Key, d.Emit),
				From:        karabiner.FromKey(d.Key),
				To:          []karabiner.Event{karabiner.Key(d.Emit), karabiner.SetVar(v, 0)},
				Conditions:  []karabiner.Condition{karabiner.VariableIf(v, 1)},
			},
			{
				Type:        karabiner.TypeBasic,
				Description: fmt.Sprintf("%s once -> arm double-tap", d.Key),
				From:        karabiner.FromKey(d.Key),
				To:          []karabiner.Event{karabiner.SetVar(v, 1), karabiner.Key(d.Key)},
				ToDelayedAction: &karabiner.DelayedAction{
					ToIfInvoked:  reset,
					ToIfCanceled: reset,
				},
				Parameters: map[string]int{
					karabiner.ParamDelayedActionDelay: int(d.Delay / time.Millisecond),
				},
			},
		},
	}
}

var keySymbols = map[string]string{
	"semicolon":              ";",
	"quote":                  "'",
	"comma":                  ",",
	"period":                 ".",
	"slash":                  "/",
	"backslash":              "\\",
	"open_bracket":           "[",
	"close_bracket":          "]",
	"grave_accent_and_tilde": "`",
	"hyphen":                 "-",
	"equal_sign":             "=",
	"caps_lock":              "⇪",
	"escape":                 "⎋",
	"tab":                    "⇥",
	"return_or_enter":        "↩",
	"spacebar":               "␣",
	"left_arrow":             "←",
	"right_arrow":            "→",
	"up_arrow":               "↑",
	"down_arrow":             "↓",
}

// KeySymbol returns the printed symbol for a key code, or the code itself.
func KeySymbol(code string) string {
	if s, ok := keySymbols[code]; ok {
		return s
	}
	return code
}
