// Package sources provides the candidate sources that feed the suggestion aggregator:
// operator-featured accounts, friends of friends, accounts similar to recent follows and
// globally ranked accounts.
package sources
