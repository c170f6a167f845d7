package domain

// RawTagsKind classifies the tag payload a source attached to a candidate.
type RawTagsKind int

const (
	RawTagsAbsent RawTagsKind = iota
	RawTagsEmpty
	RawTagsCollection
	RawTagsMalformed
)

// RawTags is the tag payload of one candidate occurrence as produced by a source.
// Only RawTagsCollection contributes tags; every other kind normalizes to the empty set.
type RawTags struct {
	kind RawTagsKind
	tags []Tag
}

// NoTags returns an absent payload.
func NoTags() RawTags {
	return RawTags{kind: RawTagsAbsent}
}

// MalformedTags returns a payload that could not be interpreted.
func MalformedTags() RawTags {
	return RawTags{kind: RawTagsMalformed}
}

// TagsOf returns a collection payload, or an empty payload when no tags are given.
func TagsOf(tags ...Tag) RawTags {
	if len(tags) == 0 {
		return RawTags{kind: RawTagsEmpty}
	}
	return RawTags{kind: RawTagsCollection, tags: append([]Tag(nil), tags...)}
}

// ParseRawTags interprets a loosely typed payload.
// Accepted collections are []Tag, []string, TagSet and []any whose elements are all
// strings or Tags. nil is absent; anything else is malformed.
func ParseRawTags(v any) RawTags {
	switch p := v.(type) {
	case nil:
		return NoTags()
	case RawTags:
		return p
	case []Tag:
		return TagsOf(p...)
	case TagSet:
		return TagsOf(p...)
	case []string:
		tags := make([]Tag, len(p))
		for i, s := range p {
			tags[i] = Tag(s)
		}
		return TagsOf(tags...)
	case []any:
		tags := make([]Tag, 0, len(p))
		for _, e := range p {
			switch s := e.(type) {
			case string:
				tags = append(tags, Tag(s))
			case Tag:
				tags = append(tags, s)
			default:
				return MalformedTags()
			}
		}
		return TagsOf(tags...)
	default:
		return MalformedTags()
	}
}

// Kind returns the payload classification.
func (r RawTags) Kind() RawTagsKind {
	return r.kind
}

// Normalize returns the payload's tags as a set.
func (r RawTags) Normalize() TagSet {
	if r.kind != RawTagsCollection {
		return TagSet{}
	}
	return NewTagSet(r.tags...)
}
