package recmap

import (
	"fmt"

	"github.com/reoring/recmap/i18n"
)

// IssueAt creates an Issue at the given path with provided code and params map.
// The message comes from the current i18n translator.
func IssueAt(p Path, field Path, code string, params map[string]any) Issue {
	return Issue{
		Path:    p.String(),
		Field:   field.String(),
		Code:    code,
		Message: i18n.T(code, stringParams(params)),
		Params:  params,
	}
}

func stringParams(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = fmt.Sprint(v)
	}
	return out
}
