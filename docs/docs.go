// Package docs registers the OpenAPI document served under /api/v1/swagger.
// The document is maintained by hand in swagger.yaml.
package docs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

//go:embed swagger.yaml
var swaggerYAML []byte

var supportedMethods = map[string]struct{}{
	"get":    {},
	"put":    {},
	"post":   {},
	"delete": {},
	"patch":  {},
}

type document struct {
	json string
}

func (d *document) ReadDoc() string {
	return d.json
}

func init() {
	doc, err := JSON()
	if err != nil {
		panic(fmt.Sprintf("docs: invalid swagger.yaml: %v", err))
	}
	swag.Register(swag.Name, &document{json: doc})
}

// JSON renders the embedded YAML document as JSON.
func JSON() (string, error) {
	tree, err := load()
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(tree)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Operations lists every documented "METHOD path" pair, with the base
// path prefixed and path templates in Fiber's :param form.
func Operations() ([]string, error) {
	tree, err := load()
	if err != nil {
		return nil, err
	}
	base, _ := tree["basePath"].(string)
	paths, ok := tree["paths"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("paths is not an object")
	}

	var ops []string
	for path, entry := range paths {
		methods, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		for method := range methods {
			if _, ok := supportedMethods[strings.ToLower(method)]; !ok {
				continue
			}
			ops = append(ops, strings.ToUpper(method)+" "+base+fiberPath(path))
		}
	}
	sort.Strings(ops)
	return ops, nil
}

func fiberPath(p string) string {
	r := strings.NewReplacer("{", ":", "}", "")
	return r.Replace(p)
}

func load() (map[string]any, error) {
	var raw any
	if err := yaml.Unmarshal(swaggerYAML, &raw); err != nil {
		return nil, err
	}
	tree, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document is not an object")
	}
	return tree, nil
}

// normalize rewrites YAML maps with non-string keys so the tree can be
// encoded as JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	default:
		return v
	}
}
