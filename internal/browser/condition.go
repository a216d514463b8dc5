package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// textPrefix marks a condition that matches on visible text rather than CSS.
const textPrefix = "text="

// ConditionKind distinguishes how a readiness condition is matched.
type ConditionKind string

const (
	KindCSS  ConditionKind = "css"
	KindText ConditionKind = "text"
)

// Condition describes the element a page must show before it counts as ready.
type Condition struct {
	Kind  ConditionKind
	Value string
}

// CSS returns a condition matching a CSS selector.
func CSS(selector string) Condition {
	return Condition{Kind: KindCSS, Value: selector}
}

// Text returns a condition matching any visible element whose text contains s.
func Text(s string) Condition {
	return Condition{Kind: KindText, Value: s}
}

// ParseCondition accepts either "text=<needle>" or a CSS selector.
func ParseCondition(s string) (Condition, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Condition{}, errors.New("empty condition")
	}
	if strings.HasPrefix(s, textPrefix) {
		needle := strings.Trim(strings.TrimPrefix(s, textPrefix), `"'`)
		if needle == "" {
			return Condition{}, fmt.Errorf("empty text in condition %q", s)
		}
		return Text(needle), nil
	}
	return CSS(s), nil
}

// String renders the condition in the form ParseCondition accepts.
func (c Condition) String() string {
	if c.Kind == KindText {
		return textPrefix + c.Value
	}
	return c.Value
}

// visibleTextScript reports whether some rendered element under <body> shows
// the needle. innerText already drops text hidden by CSS, so a match only
// has to have a layout box.
const visibleTextScript = `(() => {
	const needle = %s;
	if (!document.body) return false;
	const skip = new Set(["SCRIPT", "STYLE", "NOSCRIPT", "TEMPLATE"]);
	for (const el of document.body.querySelectorAll("*")) {
		if (skip.has(el.tagName)) continue;
		if (!(el.innerText || "").includes(needle)) continue;
		if (el.getClientRects().length > 0) return true;
	}
	return false;
})()`

// Script returns a JavaScript expression that is true once the condition
// holds for at least one visible element. Only meaningful for text conditions.
func (c Condition) Script() string {
	needle, _ := json.Marshal(c.Value)
	return fmt.Sprintf(visibleTextScript, needle)
}
