package docstore

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"time"
)

// canonical converts a Go value into canonical JSON types so that filters
// built with native ints compare equal to stored float64 values.
func canonical(v any) any {
	switch x := v.(type) {
	case nil, bool, string, float64:
		return x
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = canonical(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = canonical(e)
		}
		return out
	default:
		// Structs, typed slices and the like take the JSON round trip.
		b, err := json.Marshal(v)
		if err != nil {
			return v
		}
		var decoded any
		if err := json.Unmarshal(b, &decoded); err != nil {
			return v
		}
		return decoded
	}
}

func equalValues(a, b any) bool {
	a, b = canonical(a), canonical(b)
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equalValues(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			ev, present := y[k]
			if !present || !equalValues(v, ev) {
				return false
			}
		}
		return true
	}
	return false
}

// resolvePath walks a dotted path and returns every leaf value it reaches.
// Arrays along the way fan out, so "comment.userUserName" over a post
// yields one value per embedded comment.
func resolvePath(doc map[string]any, path string) []any {
	parts := strings.Split(path, ".")
	current := []any{doc}
	for _, part := range parts {
		var next []any
		for _, node := range current {
			switch n := node.(type) {
			case map[string]any:
				if v, ok := n[part]; ok {
					next = append(next, v)
				}
			case []any:
				for _, elem := range n {
					if m, ok := elem.(map[string]any); ok {
						if v, ok := m[part]; ok {
							next = append(next, v)
						}
					}
				}
			}
		}
		current = next
	}
	return current
}

func matchDocument(doc Document, filter Filter) bool {
	for key, cond := range filter {
		switch key {
		case "$and":
			for _, sub := range asFilters(cond) {
				if !matchDocument(doc, sub) {
					return false
				}
			}
		case "$or":
			matched := false
			for _, sub := range asFilters(cond) {
				if matchDocument(doc, sub) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		default:
			if !matchField(doc, key, cond) {
				return false
			}
		}
	}
	return true
}

func asFilters(v any) []Filter {
	switch list := v.(type) {
	case []Filter:
		return list
	case []any:
		out := make([]Filter, 0, len(list))
		for _, e := range list {
			if m, ok := e.(map[string]any); ok {
				out = append(out, Filter(m))
			}
		}
		return out
	}
	return nil
}

func matchField(doc Document, path string, cond any) bool {
	candidates := resolvePath(doc, path)

	if ops, ok := operatorMap(cond); ok {
		return evalOperators(candidates, ops)
	}

	for _, candidate := range candidates {
		if arr, ok := candidate.([]any); ok {
			for _, elem := range arr {
				if equalValues(elem, cond) {
					return true
				}
			}
			continue
		}
		if equalValues(candidate, cond) {
			return true
		}
	}
	return false
}

func operatorMap(cond any) (map[string]any, bool) {
	m, ok := cond.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return m, true
}

func evalOperators(candidates []any, ops map[string]any) bool {
	for op, arg := range ops {
		switch op {
		case "$in":
			if !anyCandidate(candidates, func(v any) bool { return inList(v, arg) }) {
				return false
			}
		case "$nin":
			if anyCandidate(candidates, func(v any) bool { return inList(v, arg) }) {
				return false
			}
		case "$regex":
			pattern, _ := arg.(string)
			if !anyCandidate(candidates, func(v any) bool { return matchRegex(v, pattern) }) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func anyCandidate(candidates []any, pred func(any) bool) bool {
	for _, candidate := range candidates {
		if arr, ok := candidate.([]any); ok {
			for _, elem := range arr {
				if pred(elem) {
					return true
				}
			}
			continue
		}
		if pred(candidate) {
			return true
		}
	}
	return false
}

func inList(v, list any) bool {
	items, ok := canonical(list).([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if equalValues(v, item) {
			return true
		}
	}
	return false
}

func matchRegex(v any, pattern string) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return strings.Contains(s, pattern)
	}
	return re.MatchString(s)
}

// sortDocuments orders docs by the given fields, comparing numbers
// numerically and everything else as strings. Missing values sort last.
func sortDocuments(docs []Document, fields []SortField) {
	if len(fields) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, f := range fields {
			c := compareValues(firstValue(docs[i], f.Key), firstValue(docs[j], f.Key))
			if c == 0 {
				continue
			}
			if f.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func firstValue(doc Document, path string) any {
	values := resolvePath(doc, path)
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if x, ok := a.(float64); ok {
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			// RFC 3339 strings with mixed fractional-second precision do
			// not order lexically ('Z' sorts after '.'), so timestamps are
			// compared as times.
			if tx, err := time.Parse(time.RFC3339Nano, x); err == nil {
				if ty, err := time.Parse(time.RFC3339Nano, y); err == nil {
					switch {
					case tx.Before(ty):
						return -1
					case tx.After(ty):
						return 1
					}
					return 0
				}
			}
			return strings.Compare(x, y)
		}
	}
	return 0
}

func applyFindOptions(docs []Document, opts *FindOptions) []Document {
	if opts == nil {
		return docs
	}
	sortDocuments(docs, opts.Sort)
	if opts.Skip > 0 {
		if opts.Skip >= len(docs) {
			return nil
		}
		docs = docs[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < len(docs) {
		docs = docs[:opts.Limit]
	}
	return docs
}
