// Package suggestions builds "accounts to follow" lists for an account.
//
// A Service asks the Cache for the account's entry. On a miss the Aggregator
// calls every Source in declared order, merges their candidates by account id
// (first-seen order, tags unioned), caps the list at the batch size and the
// Cache stores it with a fixed TTL. The Resolver windows the entry by offset and
// limit and hydrates the ids into accounts, dropping ids that no longer resolve.
//
// Sources are expected to omit targets recorded through the ExclusionSink; the
// Aggregator does not filter them again.
package suggestions
