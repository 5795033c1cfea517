package node

import (
	"fmt"
	"strconv"
	"strings"
)

// RecordSep joins the fields of a persisted link record. Link text is not
// escaped, so text containing RecordSep cannot be decoded again.
const RecordSep = "<|>"

// Variants recorded in the sixth record field.
const (
	NameRef = "name_ref"
	TextRef = "text_ref"
)

// Link is one half of a link/backlink pair. On the source node Target is
// the linked node; on the target node (as a backlink) Target is the source.
type Link struct {
	Target     string
	Text       string
	Timestamp  int64 // unix nanoseconds, shared by both halves of a pair
	Line       uint64
	Char       uint64
	NameLinked bool
}

// BacklinkKey identifies a backlink on its holder.
type BacklinkKey struct {
	Text      string
	Timestamp int64
}

// Key returns the backlink key this link pairs with.
func (l Link) Key() BacklinkKey {
	return BacklinkKey{Text: l.Text, Timestamp: l.Timestamp}
}

// Variant returns NameRef or TextRef.
func (l Link) Variant() string {
	if l.NameLinked {
		return NameRef
	}
	return TextRef
}

// Pair builds a link stored on from (keyed by text) and its backlink stored
// on to (keyed by text and ts). Both halves carry the same timestamp.
func Pair(text, from string, fromLine, fromChar uint64, to string, toLine, toChar uint64, ts int64) (link, backlink Link) {
	nameLinked := IsNameLinked(text, to)
	link = Link{
		Target:     to,
		Text:       text,
		Timestamp:  ts,
		Line:       fromLine,
		Char:       fromChar,
		NameLinked: nameLinked,
	}
	backlink = Link{
		Target:     from,
		Text:       text,
		Timestamp:  ts,
		Line:       toLine,
		Char:       toChar,
		NameLinked: nameLinked,
	}
	return link, backlink
}

// IsNameLinked reports whether text, slugged, is a case-sensitive suffix of
// the final segment of to. "a" matches "1-a", and so does "ta" for "1-beta":
// persisted records depend on this exact rule.
func IsNameLinked(text, to string) bool {
	slug := Slug(text)
	seg := LastSegment(to)
	return len(slug) <= len(seg) && strings.HasSuffix(seg, slug)
}

// Encode renders l as a record line.
func (l Link) Encode() string {
	return strings.Join([]string{
		l.Text,
		strconv.FormatInt(l.Timestamp, 10),
		l.Target,
		strconv.FormatUint(l.Line, 10),
		strconv.FormatUint(l.Char, 10),
		l.Variant(),
	}, RecordSep)
}

// DecodeRecord parses a record produced by Encode.
func DecodeRecord(rec string) (Link, error) {
	fields := strings.Split(rec, RecordSep)
	if len(fields) != 6 {
		return Link{}, fmt.Errorf("link record %q: want 6 fields, got %d", rec, len(fields))
	}
	ts, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Link{}, fmt.Errorf("link record %q: timestamp: %w", rec, err)
	}
	line, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return Link{}, fmt.Errorf("link record %q: line: %w", rec, err)
	}
	char, err := strconv.ParseUint(fields[4], 10, 64)
	if err != nil {
		return Link{}, fmt.Errorf("link record %q: column: %w", rec, err)
	}
	var nameLinked bool
	switch fields[5] {
	case NameRef:
		nameLinked = true
	case TextRef:
	default:
		return Link{}, fmt.Errorf("link record %q: unknown variant %q", rec, fields[5])
	}
	if fields[2] == "" {
		return Link{}, fmt.Errorf("link record %q: empty target", rec)
	}
	return Link{
		Text:       fields[0],
		Timestamp:  ts,
		Target:     fields[2],
		Line:       line,
		Char:       char,
		NameLinked: nameLinked,
	}, nil
}

// PropagateRename tells n's link partners that n is now newID. For each link
// n holds, the target's matching backlink is re-pointed; for each backlink,
// the source's matching link is re-pointed. lookup resolves a key (old or
// new) to the node that should be edited. Partners that cannot be found are
// returned rather than treated as fatal. Applying the same rename twice, or
// a batch of renames in any order, gives the same result.
func PropagateRename(n *Node, newID string, lookup func(key string) *Node) (dangling []string) {
	for _, l := range n.Links {
		target := lookup(l.Target)
		if target == nil {
			dangling = append(dangling, l.Target)
			continue
		}
		bl, ok := target.Backlinks[l.Key()]
		if !ok {
			dangling = append(dangling, l.Target)
			continue
		}
		bl.Target = newID
		target.Backlinks[l.Key()] = bl
	}
	for key, bl := range n.Backlinks {
		source := lookup(bl.Target)
		if source == nil {
			dangling = append(dangling, bl.Target)
			continue
		}
		l, ok := source.Links[key.Text]
		if !ok || l.Timestamp != key.Timestamp {
			dangling = append(dangling, bl.Target)
			continue
		}
		l.Target = newID
		source.Links[key.Text] = l
	}
	return dangling
}
