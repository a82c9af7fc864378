// Package hyper builds Karabiner rules for a hyper key with letter sub-layers.
//
// # Overview
//
// A hyper key is one physical key (semicolon by default) that types nothing
// while held but sets the Karabiner variable [VarHyper]. Holding it and
// pressing a trigger key then a sub-key runs an action: hyper+a+m opens
// Spotify, hyper+d+f maximizes the window.
//
// The layer tree is plain data:
//
//	layers := []hyper.Layer{
//	    {Key: "a", Name: "Applications", Bindings: []hyper.Binding{
//	        hyper.Bind("m", hyper.App("Spotify")),
//	    }},
//	    {Key: "d", Name: "Display", Bindings: []hyper.Binding{
//	        hyper.Bind("f", hyper.Window(hyper.WindowMaximize)),
//	    }},
//	}
//	rules := hyper.Rules(layers, hyper.DefaultOptions())
//
// # Actions
//
// An [Action] is a closed variant with three builders:
//
//   - [App]: open or focus an application (resolved by [OpenApp])
//   - [Window]: a Rectangle window command (resolved by [Rectangle])
//   - [Keys] and [Emit]: a hand-written manipulator (resolved by [Passthrough])
//
// Window commands come from the fixed [WindowCommand] set. Text from layer
// files goes through [ParseWindowCommand], which rejects unknown names.
//
// # Expansion
//
// [Expand] produces one rule per layer and one manipulator per binding, in
// declaration order. Karabiner applies the first matching manipulator, so
// the order is part of the output's meaning. Every manipulator requires
// VarHyper == 1. [ExpandOptions.Sublayers] additionally tracks which trigger
// key is held, see [SublayerVariable].
//
// # Fixed rules
//
// [Rules] prepends two rules that are not generated from layers: the hyper
// key itself ([HyperKeyRule]) and a double-tap latch ([DoubleTapRule]).
//
// # Validation
//
// [Expand] is total and never fails. [Validate] reports malformed keys,
// duplicate trigger keys or sub-keys, and unset actions before expansion.
package hyper
