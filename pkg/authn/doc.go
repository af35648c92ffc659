// Package authn defines the credential-validation boundary of the Gatehouse
// authority and the outcome classifier that turns raw validation failures
// into a single symbolic decision code.
//
// Credential verification itself is an external concern: deployments plug in
// their own CredentialValidator (LDAP, database, upstream IdP). The package
// ships a StaticValidator backed by an in-memory user table for bootstrap
// and testing.
//
// The Classifier evaluates a fixed, ordered rule list so that the outcome
// for a mixed failure set is deterministic and never depends on map
// iteration order.
package authn
