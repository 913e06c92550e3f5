package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowlab/simsweep/internal/loader"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a sweep spec YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateSpec()
	},
}

func registerValidateCommand(root *cobra.Command) {
	root.AddCommand(validateCmd)
}

func validateSpec() error {
	fmt.Println("□ Validating sweep spec...")
	spec, err := loader.LoadSweepSpec(specFile)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	cases, scenarios, units := 0, 0, 0
	for _, h := range spec.Hierarchies {
		for _, c := range h.Cases {
			cases++
			for _, s := range c.Scenarios {
				scenarios++
				units += len(c.MeshFiles) * len(s.AoAList)
			}
		}
	}

	fmt.Println("✓ Sweep spec is valid")
	fmt.Printf("  %d hierarchies, %d cases, %d scenarios, %d condition units\n",
		len(spec.Hierarchies), cases, scenarios, units)
	return nil
}
