package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tieubaoca/pdf-insight-be/types"
)

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(\\{.*\\})\\s*```")
	// A backslash followed by anything that is not valid after a JSON
	// backslash. These are the escapes the model forgot to escape.
	invalidEscapePattern = regexp.MustCompile(`\\([^"\\/bfnrtu])`)
)

// ExtractJSONObject pulls a JSON object out of a free-form model reply and
// decodes it into v. The reply may wrap the object in a ```json code fence
// and frequently contains unescaped backslashes (LaTeX in particular), so
// two repair passes run before giving up:
//
//  1. Double every backslash, then collapse the doubled quote escapes
//     (`\\"` back to `\"`) that this produced from already-valid input.
//  2. If that still does not parse, start over from the original candidate
//     and double only the backslashes that do not begin a valid escape.
//
// The second pass is more surgical than the first; naive re-escaping
// over-escapes legitimate control sequences. If both passes fail the error
// wraps types.ErrMalformedOutput and carries both decode errors.
func ExtractJSONObject(text string, v any) error {
	candidate := text
	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	}

	repaired := strings.ReplaceAll(candidate, `\`, `\\`)
	repaired = strings.ReplaceAll(repaired, `\\"`, `\"`)
	firstErr := json.Unmarshal([]byte(repaired), v)
	if firstErr == nil {
		return nil
	}

	repaired = invalidEscapePattern.ReplaceAllString(candidate, `\\$1`)
	secondErr := json.Unmarshal([]byte(repaired), v)
	if secondErr == nil {
		return nil
	}

	return fmt.Errorf("%w: %v (second attempt: %v)", types.ErrMalformedOutput, firstErr, secondErr)
}
