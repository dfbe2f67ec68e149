package session

import (
	"strings"

	"github.com/pkg/errors"
)

// ExtractJSON pulls a JSON document out of pasted text. Assistant output
// usually surrounds the payload with prose, so the text is sliced from the
// first opening brace or bracket to the last closing one. A payload that
// starts at the "library" key with no outer braces is wrapped into an
// object.
func ExtractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.Wrap(ErrInvalidInput, "empty input")
	}

	// A fragment that starts at the "library" key would lose its key to the
	// prose slicing below, so wrap it before any slicing happens.
	if strings.HasPrefix(text, `"library"`) {
		return "{" + text + "}", nil
	}

	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		start := strings.IndexAny(text, "{[")
		if start != -1 {
			text = text[start:]
			end := strings.LastIndexByte(text, '}')
			if e := strings.LastIndexByte(text, ']'); e > end {
				end = e
			}
			if end != -1 {
				text = text[:end+1]
			}
		}
	}
	return text, nil
}
