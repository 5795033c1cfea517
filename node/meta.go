package node

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// TimeFormat is the fixed layout of created/updated in meta.toml.
const TimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// metaFile is the on-disk shape of meta.toml.
type metaFile struct {
	Name      string   `toml:"name"`
	Tags      []string `toml:"tags"`
	Links     []string `toml:"links"`
	Backlinks []string `toml:"backlinks"`
	Created   string   `toml:"created"`
	Updated   string   `toml:"updated"`
	Updates   int64    `toml:"updates"`
}

// EncodeMeta renders n's metadata. Records are sorted so that equal nodes
// produce byte-identical files.
func EncodeMeta(n *Node) ([]byte, error) {
	tags := n.SortedTags()
	if tags == nil {
		tags = []string{}
	}
	m := metaFile{
		Name:      n.Name,
		Tags:      tags,
		Links:     make([]string, 0, len(n.Links)),
		Backlinks: make([]string, 0, len(n.Backlinks)),
		Created:   n.Created.Format(TimeFormat),
		Updated:   n.Updated.Format(TimeFormat),
		Updates:   n.Updates,
	}
	for _, text := range slices.Sorted(maps.Keys(n.Links)) {
		m.Links = append(m.Links, n.Links[text].Encode())
	}
	keys := slices.SortedFunc(maps.Keys(n.Backlinks), func(a, b BacklinkKey) int {
		return cmp.Or(cmp.Compare(a.Timestamp, b.Timestamp), cmp.Compare(a.Text, b.Text))
	})
	for _, k := range keys {
		m.Backlinks = append(m.Backlinks, n.Backlinks[k].Encode())
	}
	return toml.Marshal(m)
}

// decodeMeta fills the persisted fields of n from data.
func decodeMeta(data []byte, n *Node) error {
	var m metaFile
	if err := toml.Unmarshal(data, &m); err != nil {
		return err
	}
	created, err := time.Parse(TimeFormat, m.Created)
	if err != nil {
		return fmt.Errorf("created: %w", err)
	}
	updated, err := time.Parse(TimeFormat, m.Updated)
	if err != nil {
		return fmt.Errorf("updated: %w", err)
	}

	n.Name = m.Name
	n.Created = created
	n.Updated = updated
	n.Updates = m.Updates
	n.Tags = make(map[string]bool, len(m.Tags))
	for _, tag := range m.Tags {
		n.Tags[tag] = true
	}
	n.Links = make(map[string]Link, len(m.Links))
	for _, rec := range m.Links {
		l, err := DecodeRecord(rec)
		if err != nil {
			return err
		}
		n.Links[l.Text] = l
	}
	n.Backlinks = make(map[BacklinkKey]Link, len(m.Backlinks))
	for _, rec := range m.Backlinks {
		bl, err := DecodeRecord(rec)
		if err != nil {
			return err
		}
		n.Backlinks[bl.Key()] = bl
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
