package domain

import "sort"

// Tag identifies the source that proposed a candidate.
type Tag string

const (
	TagFeatured                  Tag = "featured"
	TagFriendsOfFriends          Tag = "friends_of_friends"
	TagSimilarToRecentlyFollowed Tag = "similar_to_recently_followed"
	TagMostFollowed              Tag = "most_followed"
	TagMostInteractions          Tag = "most_interactions"
)

// String returns the string representation of Tag.
func (t Tag) String() string {
	return string(t)
}

// TagSet is a sorted, duplicate-free set of tags.
// The zero value is an empty set.
type TagSet []Tag

// NewTagSet builds a set from tags, dropping empty and repeated values.
func NewTagSet(tags ...Tag) TagSet {
	if len(tags) == 0 {
		return TagSet{}
	}

	seen := make(map[Tag]struct{}, len(tags))
	set := make(TagSet, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		set = append(set, t)
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}

// Union returns a new set holding the tags of both sets.
func (s TagSet) Union(other TagSet) TagSet {
	if len(other) == 0 {
		return NewTagSet(s...)
	}
	merged := make([]Tag, 0, len(s)+len(other))
	merged = append(merged, s...)
	merged = append(merged, other...)
	return NewTagSet(merged...)
}

// Contains reports whether t is in the set.
func (s TagSet) Contains(t Tag) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= t })
	return i < len(s) && s[i] == t
}

// Len returns the number of tags.
func (s TagSet) Len() int {
	return len(s)
}

// Strings returns the tags as plain strings.
func (s TagSet) Strings() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = string(t)
	}
	return out
}
