package main

import (
	"fmt"
	"os"

	"github.com/marcelsud/webhook-resume/kinds"
)

/* validate-kinds - Standalone CLI tool to validate kinds.yaml
 * Usage: go run cmd/validate-kinds/main.go [kinds.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	// Get kinds file path from args or use default
	kindsFile := "kinds.yaml"
	if len(os.Args) > 1 {
		kindsFile = os.Args[1]
	}

	fmt.Printf("Validating kinds file: %s\n", kindsFile)

	// Create loader and attempt to load kinds
	loader := kinds.NewLoader()
	if err := loader.Load(kindsFile); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Success - print loaded kinds
	loadedKinds := loader.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d kind(s):\n", len(loadedKinds))

	for i, kind := range loadedKinds {
		fmt.Printf("\n%d. Kind: %s\n", i+1, kind.Name)
		fmt.Printf("   Correlation:  %s\n", kind.Rule)
		fmt.Printf("   Handshake:    %t\n", kind.Handshake)

		if kind.SessionField != "" {
			fmt.Printf("   Session Field: %s\n", kind.SessionField)
		}
		if kind.WaitTTL != nil {
			fmt.Printf("   Wait TTL:     %d seconds\n", *kind.WaitTTL)
		}
		if kind.Schema.Discriminator != "" {
			fmt.Printf("   Discriminator: %s (%d shapes)\n", kind.Schema.Discriminator, len(kind.Schema.Shapes))
		} else {
			fmt.Printf("   Fields:       %d\n", len(kind.Schema.Fields))
		}
	}

	fmt.Printf("\n✓ All kinds are valid!\n")
	os.Exit(0)
}
