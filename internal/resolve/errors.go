package resolve

import (
	"fmt"
	"strings"
)

// NeedsClarificationError reports a required option that has no explicit
// answer and no safe default. It names the option so the front end can ask.
type NeedsClarificationError struct {
	Option string
	Reason string
}

func (e *NeedsClarificationError) Error() string {
	return fmt.Sprintf("option %q needs clarification: %s", e.Option, e.Reason)
}

// AmbiguousStackError reports tied top classifier candidates with no
// explicit primary_stack answer. Silent guessing is disallowed because a
// wrong guess makes generation corrupt the workspace.
type AmbiguousStackError struct {
	Candidates []string
}

func (e *AmbiguousStackError) Error() string {
	return fmt.Sprintf("ambiguous stack detection: %s tie at top confidence; set primary_stack to choose",
		strings.Join(e.Candidates, " and "))
}
