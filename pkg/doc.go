// Package pkg provides the libraries behind hyperkey, a generator for
// Karabiner-Elements hyper key configurations.
//
// # Overview
//
// Holding the hyper key and tapping a layer key selects a sub-layer; the next
// key runs an action such as opening an application or moving a window. The
// pkg directory is organized as follows:
//
//  1. [hyper] - Layer trees, actions and rule expansion
//  2. [karabiner] - The Karabiner configuration schema, serializer and diff
//  3. [source] - YAML, TOML and JSON layer files
//  4. [pipeline] - Orchestration (load → expand → write)
//  5. [render] - Cheat sheets and Graphviz diagrams of the layer tree
//  6. [cache], [errors], [observability], [buildinfo] - Supporting infrastructure
//
// # Data Flow
//
//	layer file or built-in tree
//	         ↓
//	    [source] package (decode + validate)
//	         ↓
//	    [hyper] package (fixed rules + one rule per layer)
//	         ↓
//	    [karabiner] package (deterministic JSON)
//	         ↓
//	    karabiner.json
//
// # Quick Start
//
//	layers := hyper.DefaultLayers()
//	rules := hyper.Rules(layers, hyper.DefaultOptions())
//	cfg := karabiner.NewConfig("Default", false, rules)
//	data, err := karabiner.Marshal(cfg)
//	err = karabiner.WriteFile(path, data)
//
// [hyper]: github.com/matzehuels/hyperkey/pkg/hyper
// [karabiner]: github.com/matzehuels/hyperkey/pkg/karabiner
// [source]: github.com/matzehuels/hyperkey/pkg/source
// [pipeline]: github.com/matzehuels/hyperkey/pkg/pipeline
// [render]: github.com/matzehuels/hyperkey/pkg/render
// [cache]: github.com/matzehuels/hyperkey/pkg/cache
// [errors]: github.com/matzehuels/hyperkey/pkg/errors
// [observability]: github.com/matzehuels/hyperkey/pkg/observability
// [buildinfo]: github.com/matzehuels/hyperkey/pkg/buildinfo
package pkg
