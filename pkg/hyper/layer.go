package hyper

import (
	"github.com/matzehuels/hyperkey/pkg/errors"
)

// Layer is a sub-layer reached by holding hyper and pressing Key.
// Bindings are expanded in declaration order.
type Layer struct {
	Key      string    // trigger key, a single letter or digit
	Name     string    // optional label such as "Applications"
	Bindings []Binding // sub-keys active in this layer
}

// Binding maps a sub-key to an action.
type Binding struct {
	Key    string
	Action Action
}

// Bind is shorthand for a Binding literal.
func Bind(key string, action Action) Binding {
	return Binding{Key: key, Action: action}
}

// Validate checks a layer tree before expansion.
//
// It reports every problem found, not just the first: malformed keys,
// duplicate trigger keys, duplicate sub-keys within a layer, unset actions,
// invalid application names, and explicit manipulators without a to list.
// [Expand] does not call Validate; it keeps every entry it is given.
func Validate(layers []Layer) error {
	var errs []error
	seen := make(map[string]bool, len(layers))

	for _, l := range layers {
		if err := errors.ValidateLayerKey(l.Key); err != nil {
			errs = append(errs, err)
		}
		if seen[l.Key] {
			errs = append(errs, errors.New(errors.ErrCodeDuplicateKey, "duplicate trigger key %q", l.Key))
		}
		seen[l.Key] = true

		subSeen := make(map[string]bool, len(l.Bindings))
		for _, b := range l.Bindings {
			if err := errors.ValidateLayerKey(b.Key); err != nil {
				errs = append(errs, errors.Wrap(errors.ErrCodeInvalidKey, err, "layer %q", l.Key))
			}
			if subSeen[b.Key] {
				errs = append(errs, errors.New(errors.ErrCodeDuplicateKey, "duplicate sub-key %q in layer %q", b.Key, l.Key))
			}
			subSeen[b.Key] = true

			if err := validateAction(b.Action); err != nil {
				errs = append(errs, errors.Wrap(errors.GetCode(err), err, "layer %q key %q", l.Key, b.Key))
			}
		}
	}
	return errors.Join(errs)
}

func validateAction(a Action) error {
	switch a.kind {
	case KindApp:
		return errors.ValidateAppName(a.app)
	case KindWindow:
		if a.window.IsZero() {
			return errors.New(errors.ErrCodeInvalidWindowCommand, "window command not set")
		}
		return nil
	case KindManipulator:
		if len(a.manipulator.To) == 0 {
			return errors.New(errors.ErrCodeInvalidAction, "manipulator has no to events")
		}
		for _, e := range a.manipulator.To {
			if e.KeyCode != "" {
				if err := errors.ValidateKeyCode(e.KeyCode); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidAction, "action not set")
	}
}

// BindingCount returns the number of bindings across layers.
func BindingCount(layers []Layer) int {
	n := 0
	for _, l := range layers {
		n += len(l.Bindings)
	}
	return n
}
