package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"gomck/examples/counter"
	"gomck/examples/latch"
	"gomck/machine"
)

// Flags that parameterize the systems.
type systemFlags struct {
	bound uint64
}

func (f *systemFlags) register(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&f.bound, "bound", 10, "bound of the counter, 0 makes it panic")
}

type systemEntry struct {
	description string
	create      func(f systemFlags) machine.System
}

var systems = map[string]systemEntry{
	"latch": {
		description: "a one-bit latch set by its input",
		create:      func(systemFlags) machine.System { return latch.New(false) },
	},
	"latch-zero": {
		description: "a one-bit latch whose input is held at zero",
		create:      func(systemFlags) machine.System { return latch.New(true) },
	},
	"counter": {
		description: "an 8-bit counter wrapping at --bound that can be reset",
		create:      func(f systemFlags) machine.System { return counter.New(f.bound) },
	},
}

func systemNames() []string {
	names := make([]string, 0, len(systems))
	for name := range systems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newSystem(name string, f systemFlags) (machine.System, error) {
	entry, ok := systems[name]
	if !ok {
		return nil, fmt.Errorf("unknown system %q, expected one of %v", name, systemNames())
	}
	return entry.create(f), nil
}

func newSystemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "systems",
		Short: "List the systems that can be verified",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range systemNames() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12v %v\n", name, systems[name].description)
			}
			return nil
		},
	}
}
