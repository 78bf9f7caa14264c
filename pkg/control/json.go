package control

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var errInvalidJSON = errors.New("control: invalid JSON payload")

// ValueJSON encodes the group's aggregated value as a JSON object, nested
// groups becoming nested objects.
func (g *FormGroup) ValueJSON() ([]byte, error) {
	out := []byte("{}")
	var err error
	walkValue(g.Value(), nil, func(path []string, value any) bool {
		out, err = sjson.SetBytes(out, jsonPath(path), value)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PatchJSON assigns values found in data to the matching descendant
// controls. Controls absent from data keep their value.
func (g *FormGroup) PatchJSON(data []byte, opts ...UpdateOption) error {
	if !gjson.ValidBytes(data) {
		return errInvalidJSON
	}
	childOpts := append(append([]UpdateOption(nil), opts...), OnlySelf())
	var patch func(group *FormGroup, prefix []string)
	patch = func(group *FormGroup, prefix []string) {
		for _, name := range group.order {
			path := append(append([]string(nil), prefix...), name)
			switch child := group.controls[name].(type) {
			case *FormGroup:
				patch(child, path)
				child.updateValueAndValidity(updateOptions{onlySelf: true, silent: collectOptions(opts).silent})
			case *FormControl:
				result := gjson.GetBytes(data, jsonPath(path))
				if result.Exists() {
					child.SetValue(result.Value(), childOpts...)
				}
			}
		}
	}
	patch(g, nil)
	g.updateValueAndValidity(collectOptions(opts))
	return nil
}

func walkValue(value any, path []string, visit func([]string, any) bool) bool {
	nested, ok := value.(map[string]any)
	if !ok || len(path) > 0 && len(nested) == 0 {
		if len(path) == 0 {
			return true
		}
		return visit(path, value)
	}
	for key, child := range nested {
		next := append(append([]string(nil), path...), key)
		if !walkValue(child, next, visit) {
			return false
		}
	}
	return true
}

var jsonPathEscaper = strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)

func jsonPath(segments []string) string {
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = jsonPathEscaper.Replace(segment)
	}
	return strings.Join(escaped, ".")
}
