package normalize

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harukimoto/driftwatch/internal/model"
)

// Document canonicalizes structured YAML/JSON documents (API specifications)
// by decoding to a node tree, sorting mapping keys at every level and
// re-serializing. All data is preserved; incidental formatting and key
// ordering differences are eliminated.
type Document struct{}

func (Document) Kind() model.DocumentKind { return model.KindOpenAPI }

func (Document) Normalize(raw string) string {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &root); err != nil {
		return raw
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return raw
	}
	sortNode(root.Content[0])
	out, err := yaml.Marshal(root.Content[0])
	if err != nil {
		return raw
	}
	return string(out)
}

// sortNode recursively sorts the key/value pairs of every mapping node by
// key. Sequence order is data, not noise, and is left alone.
func sortNode(n *yaml.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.MappingNode:
		type pair struct{ key, value *yaml.Node }
		pairs := make([]pair, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			pairs = append(pairs, pair{n.Content[i], n.Content[i+1]})
		}
		sort.SliceStable(pairs, func(i, j int) bool {
			return strings.Compare(pairs[i].key.Value, pairs[j].key.Value) < 0
		})
		n.Content = n.Content[:0]
		for _, p := range pairs {
			sortNode(p.value)
			n.Content = append(n.Content, p.key, p.value)
		}
	case yaml.SequenceNode, yaml.DocumentNode:
		for _, c := range n.Content {
			sortNode(c)
		}
	}
}
