package authn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyAccountNotFound(t *testing.T) {
	classifier := NewClassifier()

	outcome := classifier.Classify(map[string]*ValidationFailure{
		"notFound": {Kind: FailureAccountNotFound},
	})
	assert.Equal(t, OutcomeAccountNotFound, outcome)
}

func TestClassifyUnrecognized(t *testing.T) {
	classifier := NewClassifier()

	outcome := classifier.Classify(map[string]*ValidationFailure{
		"x": {Kind: FailureKind("SomethingElse")},
	})
	assert.Equal(t, OutcomeUnknown, outcome)
}

func TestClassifyEmptySet(t *testing.T) {
	classifier := NewClassifier()
	assert.Equal(t, OutcomeUnknown, classifier.Classify(nil))
}

func TestClassifyPriorityOrdering(t *testing.T) {
	classifier := NewClassifier()

	// Account-not-found outranks every other recognized kind, regardless of
	// how the failure set happens to iterate.
	outcome := classifier.Classify(map[string]*ValidationFailure{
		"a": {Kind: FailureBadPassword},
		"b": {Kind: FailureAccountLocked},
		"c": {Kind: FailureAccountNotFound},
	})
	assert.Equal(t, OutcomeAccountNotFound, outcome)

	outcome = classifier.Classify(map[string]*ValidationFailure{
		"a": {Kind: FailureBadPassword},
		"b": {Kind: FailureAccountLocked},
	})
	assert.Equal(t, OutcomeAccountLocked, outcome)

	outcome = classifier.Classify(map[string]*ValidationFailure{
		"a": {Kind: FailureBadPassword},
		"b": {Kind: FailureKind("Mystery")},
	})
	assert.Equal(t, OutcomeBadPassword, outcome)
}

func TestClassifyCustomRules(t *testing.T) {
	// Locked promoted above not-found
	classifier := NewClassifier(
		Rule{Kind: FailureAccountLocked, Outcome: OutcomeAccountLocked},
		Rule{Kind: FailureAccountNotFound, Outcome: OutcomeAccountNotFound},
	)

	outcome := classifier.Classify(map[string]*ValidationFailure{
		"a": {Kind: FailureAccountNotFound},
		"b": {Kind: FailureAccountLocked},
	})
	assert.Equal(t, OutcomeAccountLocked, outcome)

	// Kinds outside the custom rule list are unrecognized
	outcome = classifier.Classify(map[string]*ValidationFailure{
		"a": {Kind: FailureBadPassword},
	})
	assert.Equal(t, OutcomeUnknown, outcome)
}
