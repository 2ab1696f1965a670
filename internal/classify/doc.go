// Package classify turns a set of observed signals into ranked stack
// identities using the weight rules from the rule table. It never guesses:
// when two stacks tie at the top confidence both are marked ambiguous and
// the decision is pushed to the resolver, because downstream generation is
// stack-specific and a wrong guess corrupts the workspace.
package classify
