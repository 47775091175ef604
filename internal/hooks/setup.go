package hooks

import (
	"context"

	"git.home.luguber.info/inful/docprep/internal/callout"
)

// CalloutHookName is the name the callout rewriter is connected under.
const CalloutHookName = "gfm_callouts"

// CalloutHookPriority leaves room for hooks that must see the raw callouts.
const CalloutHookPriority = 100

// CalloutHook rewrites GitHub alert blockquotes into MyST admonitions.
func CalloutHook(_ context.Context, src *Source) error {
	callout.RewriteSource(&src.Text)
	return nil
}

// Setup connects the built-in hooks to r.
func Setup(r *Registry) error {
	return r.Connect(CalloutHookName, CalloutHookPriority, CalloutHook)
}
