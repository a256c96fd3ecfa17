// Package registry implements a minimal command/namespace registry good
// enough to drive inline-compile-vs-runtime-invoke decisions (§6
// "Ensemble/command registry interface"), without replicating the whole
// namespace/import machinery of a real host (explicitly out of scope,
// spec §1). It is grounded on the consumed-interface contract only;
// actual ensemble subcommand storage and import resolution belong to the
// host interpreter.
package registry

// Flags describe properties of a registered command relevant to the
// compiler (e.g. whether it may be safely inlined).
type Flags uint8

const (
	// NoInline forces DeferToRuntime even when a CommandCompiler exists,
	// e.g. because the command was redefined by a user script.
	NoInline Flags = 1 << iota
)

// Resolution is the result of resolving a command name in a namespace.
type Resolution struct {
	FullName string
	Flags    Flags
	// CompilerKey, if non-empty, names the CommandCompiler (see
	// lang/compiler/cmds) registered for this command.
	CompilerKey string
}

// Registry resolves command names to their compiler (if any) and ensemble
// membership, mirroring tclEnsemble.c's resolveCommand at the granularity
// this compiler needs.
type Registry struct {
	commands map[string]Resolution
	ensembles map[string][]string // ensemble name -> ordered subcommand names
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{commands: map[string]Resolution{}, ensembles: map[string][]string{}}
}

// Define registers a command under name with the given compiler key and
// flags (empty compilerKey means "no compile-time specialization").
func (r *Registry) Define(name, compilerKey string, flags Flags) {
	r.commands[name] = Resolution{FullName: name, Flags: flags, CompilerKey: compilerKey}
}

// DefineEnsemble registers name as an ensemble dispatching to the ordered
// subcommand list.
func (r *Registry) DefineEnsemble(name string, subcommands []string) {
	r.ensembles[name] = append([]string(nil), subcommands...)
	r.Define(name, "", 0)
}

// Resolve looks up name (the spec's resolveCommand(name, namespace), with
// namespace resolution elided since this module has no namespace tree).
func (r *Registry) Resolve(name string) (Resolution, bool) {
	res, ok := r.commands[name]
	return res, ok
}

// ResolveEnsembleSubcommand resolves a (possibly abbreviated) subcommand of
// an ensemble to its full name, per Tcl's unambiguous-prefix rule. It
// returns (full, true, false) for an exact or unique-prefix match,
// ("", false, true) when more than one subcommand shares the prefix, and
// ("", false, false) when ensemble is unknown or nothing matches.
func (r *Registry) ResolveEnsembleSubcommand(ensemble, sub string) (full string, ok bool, ambiguous bool) {
	subs, known := r.ensembles[ensemble]
	if !known {
		return "", false, false
	}
	for _, s := range subs {
		if s == sub {
			return s, true, false
		}
	}
	var match string
	count := 0
	for _, s := range subs {
		if len(s) >= len(sub) && s[:len(sub)] == sub {
			match = s
			count++
		}
	}
	if count == 1 {
		return match, true, false
	}
	if count > 1 {
		return "", false, true
	}
	return "", false, false
}
