package builtin

import "dwetl/internal/transformer"

// NewChain assembles the transform stage: normalize, rule registry, then the
// optional date-part derivation.
func NewChain(opt Options, deriveDateParts bool) transformer.Chain {
	chain := transformer.Chain{Normalize{}, NewRegistry(opt)}
	if deriveDateParts {
		chain = append(chain, DeriveDateParts{})
	}
	return chain
}
