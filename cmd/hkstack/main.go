// Command hkstack computes an H-k stack from a file of receiver functions.
//
// Usage:
//
//	hkstack [flags] TRACEFILE
//	hkstack runs --db FILE
//
// The trace file is YAML or JSON (see internal/tracefile). Flags may also be
// set from a YAML config file (--config or HKSTACK_CONFIG) or from
// HKSTACK_* environment variables, e.g. HKSTACK_ROOT_ORDER=2.
//
// Examples:
//
//	hkstack rf.yaml
//	hkstack --vp 6.3 --root-order 2 --out hk.csv rf.yaml
//	hkstack --no-ppss --weights 0.7,0.3 --db runs.sqlite rf.yaml
//	hkstack runs --db runs.sqlite
package main

import "os"

func main() {
	cmd := newRootCommand(os.Stdout)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
