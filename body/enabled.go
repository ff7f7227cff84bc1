package body

import "github.com/alexferl/bodyparser/config"

// EnabledKinds records, for every supported kind, whether it is parsed.
type EnabledKinds map[Kind]bool

// BuildEnabledKinds resolves a list of kind names into a complete EnabledKinds map.
// Kinds that are not listed are explicitly disabled.
func BuildEnabledKinds(names []string) (EnabledKinds, error) {
	enabled := make(EnabledKinds, len(SupportedKinds))
	for _, k := range SupportedKinds {
		enabled[k] = false
	}

	for _, name := range names {
		kind, err := ParseKind(name)
		if err != nil {
			return nil, &config.Error{Field: "enableTypes", Value: name, Err: err}
		}
		enabled[kind] = true
	}
	return enabled, nil
}
