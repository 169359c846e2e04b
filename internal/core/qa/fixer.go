package qa

import (
	"regexp"
	"strings"

	"github.com/agenthands/papergraph/internal/core/common"
)

var (
	nodeLabelRe = regexp.MustCompile(`\(\s*([A-Za-z_]\w*)?\s*:\s*([A-Za-z_]\w*)`)
	relTypeRe   = regexp.MustCompile(`\[\s*([A-Za-z_]\w*)?\s*:\s*([A-Za-z_]\w*)\s*\]`)
	writeWordRe = regexp.MustCompile(`(?i)\b(CREATE|MERGE|DELETE|DETACH|SET|REMOVE|DROP)\b`)
)

// ExtractCypher pulls a Cypher query out of a free-form model response:
// fences are stripped and everything before the first MATCH discarded.
func ExtractCypher(response string) string {
	s := common.StripFences(response)
	upper := strings.ToUpper(s)
	idx := strings.Index(upper, "MATCH")
	if idx == -1 {
		return ""
	}
	return strings.TrimSpace(s[idx:])
}

// ReadOnly reports whether the query contains no write clauses.
func ReadOnly(cypher string) bool {
	return !writeWordRe.MatchString(cypher)
}

// FixCypher repairs the two mistakes generated queries make most often
// against this schema: inventing node labels (everything here is
// Entity) and using the relation name as the relationship type instead
// of the type property on RELATION.
func FixCypher(cypher string) string {
	fixed := nodeLabelRe.ReplaceAllStringFunc(cypher, func(m string) string {
		sub := nodeLabelRe.FindStringSubmatch(m)
		if sub[2] == "Entity" {
			return m
		}
		return strings.Replace(m, ":"+sub[2], ":Entity", 1)
	})

	fixed = relTypeRe.ReplaceAllStringFunc(fixed, func(m string) string {
		sub := relTypeRe.FindStringSubmatch(m)
		if sub[2] == "RELATION" {
			return m
		}
		variable := sub[1]
		return "[" + variable + ":RELATION {type: '" + sub[2] + "'}]"
	})

	return fixed
}
