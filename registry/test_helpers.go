package registry

import "github.com/stretchr/testify/mock"

// MatchPending creates a custom matcher for pending-entry arguments in mocks
func MatchPending(matcher func(PendingEntry) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchOutcome creates a custom matcher for outcome-entry arguments in mocks
func MatchOutcome(matcher func(OutcomeEntry) bool) interface{} {
	return mock.MatchedBy(matcher)
}
