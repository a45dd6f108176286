package docs

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAML returns the embedded document.
func YAML() []byte {
	return swaggerYAML
}

// responseSets maps path -> method -> documented response codes.
type responseSets map[string]map[string]map[string]struct{}

func parseResponses(raw []byte) (responseSets, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	tree, ok := normalize(doc).(map[string]any)
	if !ok {
		return nil, errors.New("document is not an object")
	}
	paths, ok := tree["paths"].(map[string]any)
	if !ok {
		return nil, errors.New("missing top-level paths field")
	}

	out := make(responseSets, len(paths))
	for path, entry := range paths {
		methods, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		ops := make(map[string]map[string]struct{})
		for method, opRaw := range methods {
			method = strings.ToLower(strings.TrimSpace(method))
			if _, ok := supportedMethods[method]; !ok {
				continue
			}
			codes := make(map[string]struct{})
			if op, ok := opRaw.(map[string]any); ok {
				if responses, ok := op["responses"].(map[string]any); ok {
					for code := range responses {
						if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
							codes[code] = struct{}{}
						}
					}
				}
			}
			ops[method] = codes
		}
		if len(ops) > 0 {
			out[path] = ops
		}
	}
	return out, nil
}

// Breaking lists the changes in revision that would break clients of base:
// removed paths, removed operations and removed response codes. The result
// is sorted and empty when revision is backward compatible.
func Breaking(base, revision []byte) ([]string, error) {
	baseSets, err := parseResponses(base)
	if err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}
	revSets, err := parseResponses(revision)
	if err != nil {
		return nil, fmt.Errorf("revision: %w", err)
	}

	var issues []string
	for path, baseOps := range baseSets {
		revOps, ok := revSets[path]
		if !ok {
			issues = append(issues, "removed path: "+path)
			continue
		}
		for method, baseCodes := range baseOps {
			revCodes, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			for code := range baseCodes {
				if _, ok := revCodes[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(code)))
				}
			}
		}
	}
	sort.Strings(issues)
	return issues, nil
}
