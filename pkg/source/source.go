package source

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/hyperkey/pkg/errors"
	"github.com/matzehuels/hyperkey/pkg/hyper"
	"github.com/matzehuels/hyperkey/pkg/karabiner"
)

// Format is a layer file encoding.
type Format string

// Supported layer file formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatYAML, FormatTOML, FormatJSON}

// ParseFormat resolves a format name as typed on the command line.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown layer format %q (want yaml, toml or json)", name)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer layer format of %s: no extension", path)
	}
	return ParseFormat(ext)
}

// file mirrors the on-disk layout. Decoding goes through a generic map and
// mapstructure so that all three formats reject unknown fields the same way.
// Weak typing lets YAML and TOML digit keys (key: 7) decode as strings.
type file struct {
	Layers []layerEntry `mapstructure:"layers" yaml:"layers" toml:"layers" json:"layers"`
}

type layerEntry struct {
	Key      string         `mapstructure:"key" yaml:"key" toml:"key" json:"key"`
	Name     string         `mapstructure:"name" yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	Bindings []bindingEntry `mapstructure:"bindings" yaml:"bindings,omitempty" toml:"bindings,omitempty" json:"bindings,omitempty"`
}

type bindingEntry struct {
	Key         string       `mapstructure:"key" yaml:"key" toml:"key" json:"key"`
	App         string       `mapstructure:"app" yaml:"app,omitempty" toml:"app,omitempty" json:"app,omitempty"`
	Window      string       `mapstructure:"window" yaml:"window,omitempty" toml:"window,omitempty" json:"window,omitempty"`
	Description string       `mapstructure:"description" yaml:"description,omitempty" toml:"description,omitempty" json:"description,omitempty"`
	To          []eventEntry `mapstructure:"to" yaml:"to,omitempty" toml:"to,omitempty" json:"to,omitempty"`
}

type eventEntry struct {
	KeyCode      string   `mapstructure:"key_code" yaml:"key_code,omitempty" toml:"key_code,omitempty" json:"key_code,omitempty"`
	Modifiers    []string `mapstructure:"modifiers" yaml:"modifiers,omitempty" toml:"modifiers,omitempty" json:"modifiers,omitempty"`
	ShellCommand string   `mapstructure:"shell_command" yaml:"shell_command,omitempty" toml:"shell_command,omitempty" json:"shell_command,omitempty"`
}

// Load reads and validates a layer file, picking the format from its
// extension.
func Load(path string) ([]hyper.Layer, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layer file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	layers, err := Decode(f, format)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "load %s", path)
	}
	return layers, nil
}

// Decode reads a layer tree from r and validates it with [hyper.Validate].
//
// Each binding sets exactly one of app, window or to. Unknown fields, unknown
// window commands and malformed keys are errors.
func Decode(r io.Reader, format Format) ([]hyper.Layer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read layers")
	}

	raw := map[string]any{}
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported layer format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s layers", format)
	}

	var doc file
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &doc,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build decoder")
	}
	if err := dec.Decode(raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s layers", format)
	}

	layers, err := doc.layers()
	if err != nil {
		return nil, err
	}
	if err := hyper.Validate(layers); err != nil {
		return nil, err
	}
	return layers, nil
}

func (f file) layers() ([]hyper.Layer, error) {
	var errs []error
	layers := make([]hyper.Layer, 0, len(f.Layers))
	for _, le := range f.Layers {
		l := hyper.Layer{Key: le.Key, Name: le.Name}
		for _, be := range le.Bindings {
			action, err := be.action()
			if err != nil {
				errs = append(errs, errors.Wrap(errors.GetCode(err), err, "layer %q key %q", le.Key, be.Key))
				continue
			}
			l.Bindings = append(l.Bindings, hyper.Bind(be.Key, action))
		}
		layers = append(layers, l)
	}
	if err := errors.Join(errs); err != nil {
		return nil, err
	}
	return layers, nil
}

func (b bindingEntry) action() (hyper.Action, error) {
	set := 0
	for _, ok := range []bool{b.App != "", b.Window != "", len(b.To) > 0} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return hyper.Action{}, errors.New(errors.ErrCodeInvalidAction, "exactly one of app, window or to must be set")
	}
	if b.Description != "" && len(b.To) == 0 {
		return hyper.Action{}, errors.New(errors.ErrCodeInvalidAction, "description is only allowed with to")
	}

	switch {
	case b.App != "":
		return hyper.App(b.App), nil
	case b.Window != "":
		cmd, err := hyper.ParseWindowCommand(b.Window)
		if err != nil {
			return hyper.Action{}, err
		}
		return hyper.Window(cmd), nil
	}

	events := make([]karabiner.Event, 0, len(b.To))
	for _, e := range b.To {
		if (e.KeyCode == "") == (e.ShellCommand == "") {
			return hyper.Action{}, errors.New(errors.ErrCodeInvalidAction, "each to event needs exactly one of key_code or shell_command")
		}
		events = append(events, karabiner.Event{KeyCode: e.KeyCode, Modifiers: e.Modifiers, ShellCommand: e.ShellCommand})
	}
	return hyper.Keys(karabiner.Manipulator{Description: b.Description, To: events}), nil
}

// Encode writes layers to w in the given format. Manipulators using fields
// the file layout cannot express (conditions, to_if_alone, variables) are
// rejected with INVALID_FORMAT.
func Encode(w io.Writer, layers []hyper.Layer, format Format) error {
	doc, err := fromLayers(layers)
	if err != nil {
		return err
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(errors.ErrCodeWriteFailed, err, "encode yaml layers")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(errors.ErrCodeWriteFailed, err, "encode yaml layers")
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return errors.Wrap(errors.ErrCodeWriteFailed, err, "encode toml layers")
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(errors.ErrCodeWriteFailed, err, "encode json layers")
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported layer format %q", format)
	}
	return nil
}

// Marshal is Encode into a byte slice.
func Marshal(layers []hyper.Layer, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, layers, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fromLayers(layers []hyper.Layer) (file, error) {
	doc := file{Layers: make([]layerEntry, 0, len(layers))}
	for _, l := range layers {
		le := layerEntry{Key: l.Key, Name: l.Name}
		for _, b := range l.Bindings {
			be, err := toEntry(b)
			if err != nil {
				return file{}, errors.Wrap(errors.GetCode(err), err, "layer %q key %q", l.Key, b.Key)
			}
			le.Bindings = append(le.Bindings, be)
		}
		doc.Layers = append(doc.Layers, le)
	}
	return doc, nil
}

func toEntry(b hyper.Binding) (bindingEntry, error) {
	be := bindingEntry{Key: b.Key}
	switch b.Action.Kind() {
	case hyper.KindApp:
		be.App = b.Action.AppName()
	case hyper.KindWindow:
		be.Window = b.Action.WindowCommand().String()
	case hyper.KindManipulator:
		m := b.Action.Manipulator()
		if !expressible(m) {
			return bindingEntry{}, errors.New(errors.ErrCodeInvalidFormat, "manipulator cannot be written to a layer file")
		}
		be.Description = m.Description
		for _, e := range m.To {
			be.To = append(be.To, eventEntry{KeyCode: e.KeyCode, Modifiers: e.Modifiers, ShellCommand: e.ShellCommand})
		}
	default:
		return bindingEntry{}, errors.New(errors.ErrCodeInvalidAction, "action not set")
	}
	return be, nil
}

func expressible(m karabiner.Manipulator) bool {
	if len(m.ToIfAlone) > 0 || len(m.ToAfterKeyUp) > 0 || m.ToDelayedAction != nil ||
		len(m.Conditions) > 0 || len(m.Parameters) > 0 || len(m.To) == 0 {
		return false
	}
	for _, e := range m.To {
		if e.SetVariable != nil || (e.KeyCode == "") == (e.ShellCommand == "") {
			return false
		}
	}
	return true
}
