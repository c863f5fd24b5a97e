package reference

import (
	"fmt"
	"sort"
	"strings"
)

// Builtin returns a compiled copy of the named reference set shipped with
// the binary.
func Builtin(name string) (*Set, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: built-in %q", ErrNotFound, name)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("built-in set %s: %w", name, err)
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("built-in set %s: %w", name, err)
	}
	if err := set.Compile(); err != nil {
		return nil, err
	}
	return set, nil
}

// BuiltinNames lists the reference sets shipped with the binary.
func BuiltinNames() []string {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if isYAML(entry.Name()) {
			names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
		}
	}
	sort.Strings(names)
	return names
}
