// Package services implements the Gatehouse service registry: the
// authorization store of client applications permitted to participate in
// single sign-on, and the policy flags under which they do so.
//
// The Manager keeps an in-memory index loaded from a RegistryDAO and writes
// through to it on every mutation. Mutations are serialized; reads never
// block behind them.
//
// # Fail-open bootstrap
//
// An empty registry means authorization has not been configured yet. In that
// state every lookup returns a synthetic disabled-mode definition that
// permits any service (SSO and proxying enabled, anonymous access off), so
// the authority is usable before the first service is registered. This is a
// deliberate operability default; once at least one service exists, a lookup
// that matches nothing is a hard denial.
package services
