package resolve

import (
	"regexp"

	"github.com/mvp-joe/wayfind/internal/extract"
)

// References collects every occurrence of word in the query document.
// The primary path is structural: the document's tree is walked and each
// occurrence is classified declaration-or-use by parent shape. When no tree
// can be produced (unsupported language), a whole-word regex scan of the raw
// text serves as the fallback, with no declaration distinction.
func (r *Resolver) References(word, uri string, includeDeclaration bool) []Location {
	if word == "" {
		return nil
	}
	doc, ok := r.docs.Get(uri)
	if !ok {
		return nil
	}

	language := r.registry.Resolve(doc.LanguageID)
	source := []byte(doc.Text)

	if language != "" {
		if tree, ok := r.registry.Parse(language, source); ok {
			defer tree.Close()
			occurrences := extract.FindReferences(tree, source, word)
			locations := make([]Location, 0, len(occurrences))
			for _, occ := range occurrences {
				if !includeDeclaration && occ.IsDeclaration {
					continue
				}
				locations = append(locations, Location{URI: uri, Range: occ.Range})
			}
			return locations
		}
	}

	return textualReferences(word, uri, doc.Text)
}

// textualReferences is the no-tree fallback: every whole-word match in the
// raw text, in document order.
func textualReferences(word, uri, text string) []Location {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return nil
	}

	var locations []Location
	content := []byte(text)
	for _, m := range re.FindAllIndex(content, -1) {
		line, col := positionAt(content, m[0])
		locations = append(locations, Location{
			URI: uri,
			Range: extract.Range{
				Start: extract.Position{Line: line, Character: col},
				End:   extract.Position{Line: line, Character: col + len(word)},
			},
		})
	}
	return locations
}
