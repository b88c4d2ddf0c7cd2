package openai

// extractJSONObject returns the first balanced brace-delimited substring of
// raw. Models often wrap the requested JSON in prose or code fences, so a
// strict parse of the whole reply is tried against this extraction instead.
// When no balanced object exists the input is returned unchanged and the
// caller's parse error stands.
func extractJSONObject(raw string) string {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range raw {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				return raw[start : i+1]
			}
		}
	}
	return raw
}
