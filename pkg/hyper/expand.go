package hyper

import (
	"fmt"

	"github.com/matzehuels/hyperkey/pkg/errors"
	"github.com/matzehuels/hyperkey/pkg/karabiner"
)

// VarHyper is the Karabiner variable set while the hyper key is held.
const VarHyper = "hyper"

// SublayerVariable returns the variable tracking whether sub-layer key is held.
func SublayerVariable(key string) string {
	return "hyper_sublayer_" + key
}

// ExpandOptions controls sub-layer expansion.
type ExpandOptions struct {
	// Sublayers makes each trigger key a held sub-layer. Each rule then starts
	// with a toggle manipulator setting SublayerVariable(key) while the
	// trigger is held, and every binding also requires that variable. Without
	// it, bindings are guarded by the hyper variable alone and each rule has
	// exactly one manipulator per binding.
	Sublayers bool
}

// ValidateExpansion reports bindings that opts would make unreachable.
//
// Flat expansion never checks the trigger key, and Karabiner applies the
// first matching manipulator, so a sub-key bound in two layers would only
// ever fire in the first. Each such sub-key is a DUPLICATE_KEY error. With
// sub-layer variables every binding has its own guard and nothing is
// reported.
func ValidateExpansion(layers []Layer, opts ExpandOptions) error {
	if opts.Sublayers {
		return nil
	}
	var errs []error
	owner := make(map[string]string)
	for _, l := range layers {
		for _, b := range l.Bindings {
			first, taken := owner[b.Key]
			if !taken {
				owner[b.Key] = l.Key
				continue
			}
			if first != l.Key {
				errs = append(errs, errors.New(errors.ErrCodeDuplicateKey,
					"sub-key %q in layer %q is shadowed by layer %q without sub-layer variables", b.Key, l.Key, first))
			}
		}
	}
	return errors.Join(errs)
}

// Expand turns a layer tree into Karabiner rules: one rule per layer in
// layer order, one manipulator per binding in binding order.
//
// Each binding's action is resolved to a manipulator, then given type
// "basic", a from matching the sub-key with any modifiers, and a guard
// requiring VarHyper == 1 ahead of any conditions the action already carries.
// Expand is pure and does not validate its input; see [Validate].
func Expand(layers []Layer, opts ExpandOptions) []karabiner.Rule {
	var allSublayers []string
	if opts.Sublayers {
		allSublayers = make([]string, len(layers))
		for i, l := range layers {
			allSublayers[i] = SublayerVariable(l.Key)
		}
	}

	rules := make([]karabiner.Rule, 0, len(layers))
	for _, l := range layers {
		rules = append(rules, expandLayer(l, opts, allSublayers))
	}
	return rules
}

func expandLayer(l Layer, opts ExpandOptions, allSublayers []string) karabiner.Rule {
	guards := []karabiner.Condition{karabiner.VariableIf(VarHyper, 1)}

	manipulators := make([]karabiner.Manipulator, 0, len(l.Bindings)+1)
	if opts.Sublayers {
		v := SublayerVariable(l.Key)
		manipulators = append(manipulators, sublayerToggle(l.Key, v, allSublayers))
		guards = append(guards, karabiner.VariableIf(v, 1))
	}

	for _, b := range l.Bindings {
		manipulators = append(manipulators, guard(b.Action.Resolve(), b.Key, guards))
	}

	return karabiner.Rule{
		Description:  ruleDescription(l),
		Manipulators: manipulators,
	}
}

// guard completes a resolved action into a sub-key manipulator.
func guard(m karabiner.Manipulator, key string, guards []karabiner.Condition) karabiner.Manipulator {
	m.Type = karabiner.TypeBasic
	m.From = karabiner.FromKey(key)

	conditions := make([]karabiner.Condition, 0, len(guards)+len(m.Conditions))
	conditions = append(conditions, guards...)
	conditions = append(conditions, m.Conditions...)
	m.Conditions = conditions
	return m
}

// sublayerToggle holds v at 1 while the trigger key is down. It only fires
// when no other sub-layer is active, so keys that are both a trigger and a
// sub-key still work inside another layer.
func sublayerToggle(key, v string, allSublayers []string) karabiner.Manipulator {
	conditions := make([]karabiner.Condition, 0, len(allSublayers))
	for _, other := range allSublayers {
		if other != v {
			conditions = append(conditions, karabiner.VariableIf(other, 0))
		}
	}
	conditions = append(conditions, karabiner.VariableIf(VarHyper, 1))

	return karabiner.Manipulator{
		Type:         karabiner.TypeBasic,
		Description:  fmt.Sprintf("Toggle Hyper sublayer %s", key),
		From:         karabiner.FromKey(key),
		To:           []karabiner.Event{karabiner.SetVar(v, 1)},
		ToAfterKeyUp: []karabiner.Event{karabiner.SetVar(v, 0)},
		Conditions:   conditions,
	}
}

func ruleDescription(l Layer) string {
	if l.Name != "" {
		return fmt.Sprintf("Hyper Key sublayer %q (%s)", l.Key, l.Name)
	}
	return fmt.Sprintf("Hyper Key sublayer %q", l.Key)
}
