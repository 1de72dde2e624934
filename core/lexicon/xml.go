package lexicon

import (
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/lexica-dev/wordbreak/core/errors"
)

// Compiled selectors for the lexicon document shape.
var (
	lexiconRootExpr  = xpath.MustCompile("/lexicon")
	lexiconEntryExpr = xpath.MustCompile("/lexicon/entry")
)

// ParseXML reads an XML lexicon of the form:
//
//	<lexicon name="english">
//	  <entry form="apple"/>
//	  <entry>banana</entry>
//	</lexicon>
//
// An entry's word is its form attribute when present, its text content
// otherwise. Entries that yield an empty word are skipped.
func ParseXML(r io.Reader) (*Lexicon, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errors.NewParse("XML lexicon", "", err.Error())
	}

	root := xmlquery.QuerySelector(doc, lexiconRootExpr)
	if root == nil {
		return nil, errors.NewParse("XML lexicon", "", "missing <lexicon> root element")
	}

	lex := &Lexicon{
		Name:        root.SelectAttr("name"),
		Description: root.SelectAttr("description"),
	}

	var words []string
	for _, entry := range xmlquery.QuerySelectorAll(doc, lexiconEntryExpr) {
		word := entry.SelectAttr("form")
		if word == "" {
			word = strings.TrimSpace(entry.InnerText())
		}
		if word == "" {
			continue
		}
		words = append(words, word)
	}
	lex.Words = dedupe(words)
	return lex, nil
}
