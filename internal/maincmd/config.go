package maincmd

import "github.com/caarlos0/env/v6"

// tuning holds the optimizer knobs that the teacher's own mainer.Parser
// leaves to flags; SPEC_FULL.md gives caarlos0/env/v6 a direct home here
// instead, parsed before mainer.Parser runs (env.Parse has nothing to do
// with command-line flags, so the two never race over the same field).
// Trace is parsed from TBCC_TRACE, but no subcommand reads it.
type tuning struct {
	MaxRelaxationRounds int  `env:"TBCC_MAX_RELAXATION_ROUNDS" envDefault:"8"`
	Trace               bool `env:"TBCC_TRACE" envDefault:"false"`
}

// loadTuning reads the process environment into a tuning value, falling
// back to its envDefault tags on any parse error (a malformed override
// shouldn't make the optimize subcommand unusable).
func loadTuning() tuning {
	var t tuning
	if err := env.Parse(&t); err != nil {
		return tuning{MaxRelaxationRounds: 8}
	}
	return t
}
