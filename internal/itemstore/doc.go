// Package itemstore emulates the managed NoSQL item store the audit pipeline
// reads sites, audits, opportunities and entitlements from.
//
// Every collection returns fixed or echoed records. Identities are
// sentinels: a single-tenant local run needs records that are mutually
// consistent (the enrollment's entitlement id matches the entitlement, the
// organization id echoes the lookup) rather than realistic.
//
// The one piece of state is the CorrelationCache. Opportunity.AddSuggestions
// writes the batch it created into the cache and
// Suggestion.AllByOpportunityIDAndStatus reads it back, letting a later
// audit step observe what an earlier step produced. The cache is owned by
// the caller and passed in through Options, so independent emulators never
// share it.
package itemstore
