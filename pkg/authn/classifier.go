package authn

// Outcome is the symbolic decision code the classifier produces from a set
// of credential-validation failures. Front ends use it to pick an error
// code or UI branch.
type Outcome string

const (
	// OutcomeAccountNotFound is reported when any submitted credential named
	// an account that does not exist.
	OutcomeAccountNotFound Outcome = "AccountNotFound"
	// OutcomeAccountLocked is reported for administratively locked accounts.
	OutcomeAccountLocked Outcome = "AccountLocked"
	// OutcomeBadPassword is reported for a wrong password on a known account.
	OutcomeBadPassword Outcome = "BadPassword"
	// OutcomeUnknown is the fallback when no rule recognizes any failure kind.
	OutcomeUnknown Outcome = "UNKNOWN"
)

// Rule maps one failure kind to the outcome it produces. Rules are evaluated
// in list order, so earlier rules take precedence over later ones.
type Rule struct {
	Kind    FailureKind
	Outcome Outcome
}

// DefaultRules returns the standard priority ordering: account-not-found
// wins over every other recognized kind, then locked, then bad password.
func DefaultRules() []Rule {
	return []Rule{
		{Kind: FailureAccountNotFound, Outcome: OutcomeAccountNotFound},
		{Kind: FailureAccountLocked, Outcome: OutcomeAccountLocked},
		{Kind: FailureBadPassword, Outcome: OutcomeBadPassword},
	}
}

// Classifier reduces a set of named validation failures to a single outcome
// using an explicit, ordered rule list.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier with the given priority-ordered rules.
// With no rules it uses DefaultRules.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify returns the outcome for the first rule, in priority order, whose
// kind appears anywhere in the failure set. Unrecognized kinds fall through
// to OutcomeUnknown.
func (c *Classifier) Classify(failures map[string]*ValidationFailure) Outcome {
	for _, rule := range c.rules {
		for _, f := range failures {
			if f != nil && f.Kind == rule.Kind {
				return rule.Outcome
			}
		}
	}
	return OutcomeUnknown
}
