package evaluator

import "time"

// builtins is the fixed native function table. The language surface is
// deliberately tiny: clock() is the only built-in.
var builtins = map[string]*Builtin{
	"clock": {
		Name:   "clock",
		ArityN: 0,
		Fn: func(args ...Object) Object {
			return &Number{Value: float64(time.Now().UnixNano()) / 1e9}
		},
	},
}

// RegisterBuiltins installs the native functions into an environment.
// The driver calls this on the globals frame before execution begins.
func RegisterBuiltins(env *Environment) {
	for name, builtin := range builtins {
		env.Define(name, builtin)
	}
}

// BuiltinNames returns the native function names, for REPL completion.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	return names
}
