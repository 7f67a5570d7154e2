package ledger

import (
	"fmt"
	"strconv"
	"time"

	"web3events/internal/domain"
)

// The ledger does not serialize set-like collections uniformly across object
// versions: depending on how the object was produced, the registrant set shows
// up as a bare array, as {contents: [...]}, or buried under one or more
// fields/vec_set wrappers. Matchers are tried in order and the first hit wins;
// nothing matching yields an empty set, never nil.

// DecodeAddressSet extracts a set of address strings from any of the known
// serialized shapes. It always returns a non-nil slice.
func DecodeAddressSet(v any) []string {
	if out, ok := decodeSet(v); ok {
		return out
	}
	return []string{}
}

func decodeSet(v any) ([]string, bool) {
	if out, ok := matchDirectArray(v); ok {
		return out, true
	}
	if out, ok := matchContentsField(v); ok {
		return out, true
	}
	return matchWrappedSet(v)
}

// Shape A: a bare JSON array of address strings.
func matchDirectArray(v any) ([]string, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Shape B: {contents: [...]}.
func matchContentsField(v any) ([]string, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	contents, ok := m["contents"]
	if !ok {
		return nil, false
	}
	return matchDirectArray(contents)
}

// Shape C: the set nested under a fields or vec_set wrapper, possibly more
// than one level deep.
func matchWrappedSet(v any) ([]string, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	for _, key := range []string{"fields", "vec_set"} {
		inner, ok := m[key]
		if !ok {
			continue
		}
		if out, ok := decodeSet(inner); ok {
			return out, true
		}
	}
	return nil, false
}

// DecodeTableID extracts the object id of a nested table reference. Table
// handles appear either as a bare id string or wrapped as {fields:{id:{id}}}.
func DecodeTableID(v any) (string, error) {
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return "", fmt.Errorf("table reference has unexpected shape %T", v)
	}
	if inner, ok := m["fields"].(map[string]any); ok {
		m = inner
	}
	switch id := m["id"].(type) {
	case string:
		return id, nil
	case map[string]any:
		if s, ok := id["id"].(string); ok && s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("table reference missing id")
}

// DecodeEvent decodes an on-chain event object into a normalized Event.
// Table-entry objects nest the payload under a value wrapper, which is
// unwrapped first. Timestamps are stored on chain as epoch-millisecond
// strings.
func DecodeEvent(obj *domain.LedgerObject) (*domain.Event, error) {
	if obj == nil || obj.Fields == nil {
		return nil, fmt.Errorf("event object has no fields")
	}
	fields := unwrapValue(obj.Fields)

	title := asString(fields["title"])
	if title == "" {
		return nil, fmt.Errorf("event %s missing title", obj.ID)
	}

	ev := domain.NewEvent(obj.ID, asString(fields["creator"]), title, time.Now(), time.Now())
	ev.Description = asString(fields["description"])
	ev.Location = asString(fields["location"])
	ev.StartsAt = parseEpochMillis(fields["start_time"])
	ev.EndsAt = parseEpochMillis(fields["end_time"])
	ev.Capacity = int(asUint64(fields["capacity"]))
	ev.IsFree = asBool(fields["is_free"])
	ev.Price = asUint64(fields["price"])
	ev.IsPrivate = asBool(fields["is_private"])
	ev.RequiresApproval = asBool(fields["requires_approval"])
	ev.BannerURL = asString(fields["banner_url"])
	ev.NFTImageURL = asString(fields["nft_image_url"])
	ev.POAPImageURL = asString(fields["poap_image_url"])
	ev.Registered = DecodeAddressSet(fields["attendees"])
	return ev, nil
}

// unwrapValue peels the {value:{fields:{...}}} wrapper table entries carry.
func unwrapValue(fields map[string]any) map[string]any {
	v, ok := fields["value"]
	if !ok {
		return fields
	}
	m, ok := v.(map[string]any)
	if !ok {
		return fields
	}
	if inner, ok := m["fields"].(map[string]any); ok {
		return inner
	}
	return m
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asUint64 accepts JSON numbers and the string-encoded integers the ledger
// uses for u64 fields.
func asUint64(v any) uint64 {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0
		}
		return uint64(n)
	case string:
		u, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return 0
		}
		return u
	default:
		return 0
	}
}

func parseEpochMillis(v any) time.Time {
	ms := asUint64(v)
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms)).UTC()
}
