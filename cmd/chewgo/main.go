// Command chewgo runs the declarative streaming pipelines described in
// this module's YAML configuration format. Grounded on the teacher's
// cmd/ide entry point, rebuilt around cobra/viper rather than a bespoke
// flag parser.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
