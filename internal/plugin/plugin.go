// Package plugin loads extra builtins from Go plugins. A plugin exports a
// variable named Plugin implementing the Plugin interface.
package plugin

import (
	"fmt"
	"io"
	"plugin"
)

type Plugin interface {
	Name() string
	Execute(args []string, out io.Writer) error
}

func Load(path string) (Plugin, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plugin: %w", err)
	}

	symPlugin, err := p.Lookup("Plugin")
	if err != nil {
		return nil, fmt.Errorf("plugin does not export 'Plugin' symbol: %w", err)
	}

	return asPlugin(symPlugin)
}

// Lookup hands back a pointer to the exported variable.
func asPlugin(sym any) (Plugin, error) {
	if plug, ok := sym.(Plugin); ok {
		return plug, nil
	}
	return nil, fmt.Errorf("plugin does not implement Plugin interface")
}

func LoadAll(paths []string) ([]Plugin, error) {
	plugins := make([]Plugin, 0, len(paths))
	for _, path := range paths {
		p, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		plugins = append(plugins, p)
	}
	return plugins, nil
}
