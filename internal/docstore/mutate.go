package docstore

import "strings"

// applyUpdate applies a partial update to a document in place. Paths are
// dotted; intermediate documents are created for $set as needed. Array
// operators only make sense on array (or absent) fields.
func applyUpdate(doc Document, update Update) {
	for op, arg := range update {
		fields, ok := arg.(map[string]any)
		if !ok {
			continue
		}
		for path, value := range fields {
			switch op {
			case "$set":
				setPath(doc, path, canonical(value))
			case "$push":
				mutateArray(doc, path, func(arr []any) []any {
					return append(arr, canonical(value))
				})
			case "$addToSet":
				mutateArray(doc, path, func(arr []any) []any {
					for _, elem := range arr {
						if equalValues(elem, value) {
							return arr
						}
					}
					return append(arr, canonical(value))
				})
			case "$pull":
				mutateArray(doc, path, func(arr []any) []any {
					kept := arr[:0]
					for _, elem := range arr {
						if !equalValues(elem, value) {
							kept = append(kept, elem)
						}
					}
					return kept
				})
			}
		}
	}
}

func setPath(doc map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

func mutateArray(doc map[string]any, path string, fn func([]any) []any) {
	parts := strings.Split(path, ".")
	current := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			return
		}
		current = next
	}
	leaf := parts[len(parts)-1]
	arr, ok := current[leaf].([]any)
	if !ok && current[leaf] != nil {
		return
	}
	current[leaf] = fn(arr)
}

func copyDocument(doc Document) Document {
	out, _ := canonical(map[string]any(doc)).(map[string]any)
	if out == nil {
		return Document{}
	}
	return out
}
