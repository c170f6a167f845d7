package suggestions

import "account-suggestions/internal/domain"

// merger accumulates candidates in first-seen order, unioning tags per id.
type merger struct {
	order []int64
	tags  map[int64]domain.TagSet
}

func newMerger() *merger {
	return &merger{tags: make(map[int64]domain.TagSet)}
}

// add folds one source's output into the merge. Non-positive ids are skipped.
func (m *merger) add(candidates []domain.Candidate) {
	for _, c := range candidates {
		if c.AccountID <= 0 {
			continue
		}
		tags := c.Tags.Normalize()

		existing, seen := m.tags[c.AccountID]
		if !seen {
			m.order = append(m.order, c.AccountID)
			m.tags[c.AccountID] = tags
			continue
		}
		m.tags[c.AccountID] = existing.Union(tags)
	}
}

// result returns the merged list in first-seen order.
// Ids that ended up with no tags are dropped: a suggestion always names its sources.
func (m *merger) result() []domain.RankedCandidate {
	out := make([]domain.RankedCandidate, 0, len(m.order))
	for _, id := range m.order {
		tags := m.tags[id]
		if tags.Len() == 0 {
			continue
		}
		out = append(out, domain.RankedCandidate{AccountID: id, Sources: tags})
	}
	return out
}

// Merge combines source outputs given in declared order.
func Merge(batches ...[]domain.Candidate) []domain.RankedCandidate {
	m := newMerger()
	for _, b := range batches {
		m.add(b)
	}
	return m.result()
}
