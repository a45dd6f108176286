// Package main checks that a revision of the OpenAPI document stays backward
// compatible with a base version.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"chirp/docs"
)

func main() {
	basePath := flag.String("base", "", "base OpenAPI swagger.yaml path")
	revisionPath := flag.String("revision", "", "revision swagger.yaml path (defaults to the document built into this binary)")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> [-revision <path>]")
		os.Exit(2)
	}

	// #nosec G304: path comes from CLI flags in a dev tool
	base, err := os.ReadFile(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
		os.Exit(1)
	}
	revision := docs.YAML()
	if *revisionPath != "" {
		// #nosec G304: path comes from CLI flags in a dev tool
		if revision, err = os.ReadFile(*revisionPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
			os.Exit(1)
		}
	}

	issues, err := docs.Breaking(base, revision)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse spec: %v\n", err)
		os.Exit(1)
	}
	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("openapi compatibility check passed")
}
