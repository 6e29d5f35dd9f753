// Package highlight renders edit scripts as text and as highlighted HTML.
package highlight

import (
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"timeline.znkr.io/demo/modification"
	"timeline.znkr.io/demo/source"
)

var style = map[chroma.TokenType]string{
	chroma.GenericInserted:   "hl-ins",
	chroma.GenericDeleted:    "hl-del",
	chroma.GenericStrong:     "hl-upd",
	chroma.GenericSubheading: "hl-mov",
}

type Line struct {
	LineNo  int
	Content template.HTML
}

// Format renders changes in a diff like format with one line per modification:
//
//	+ insert video at 2: <element>
//	- remove video at 3: <element>
//	! update video at 0: <old> -> <new>
//	@ move video from 0 to 3: <element>
func Format(changes []source.Change) string {
	var sb strings.Builder
	for _, c := range changes {
		name := c.Section.Singular()
		for _, m := range c.Modifications {
			switch m.Op {
			case modification.Insert:
				fmt.Fprintf(&sb, "+ insert %s at %d: %v\n", name, m.Offset, m.New)
			case modification.Remove:
				fmt.Fprintf(&sb, "- remove %s at %d: %v\n", name, m.Offset, m.Old)
			case modification.Update:
				fmt.Fprintf(&sb, "! update %s at %d: %v -> %v\n", name, m.Offset, m.Old, m.New)
			case modification.Move:
				fmt.Fprintf(&sb, "@ move %s from %d to %d: %v\n", name, m.Offset, m.To, m.Old)
			}
		}
	}
	return sb.String()
}

// Script returns the highlighted lines of [Format].
func Script(changes []source.Change) ([]Line, error) {
	in := Format(changes)
	if in == "" {
		return nil, nil
	}

	hl := newHighlighter()
	lines, err := hl.lines(in)
	if err != nil {
		return nil, fmt.Errorf("parsing script: %v", err)
	}

	ret := make([]Line, 0, len(lines))
	for i, line := range lines {
		ret = append(ret, Line{i + 1, template.HTML(hl.highlight(line))})
	}
	return ret, nil
}

type highlighter struct {
	lexer chroma.Lexer
}

func newHighlighter() *highlighter {
	lexer := lexers.Get("diff")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &highlighter{lexer: chroma.Coalesce(lexer)}
}

func (hl *highlighter) highlight(line []chroma.Token) string {
	var sb strings.Builder
	for _, token := range line {
		class := class(token.Type)
		if class != "" {
			fmt.Fprintf(&sb, "<span class=\"%s\">", class)
		}
		sb.WriteString(html.EscapeString(strings.TrimSuffix(token.Value, "\n")))
		if class != "" {
			fmt.Fprintf(&sb, "</span>")
		}
	}
	return sb.String()
}

func (hl *highlighter) lines(in string) ([][]chroma.Token, error) {
	it, err := hl.lexer.Tokenise(nil, in)
	if err != nil {
		return nil, fmt.Errorf("creating iterator: %v", err)
	}
	return chroma.SplitTokensIntoLines(it.Tokens()), nil
}

func class(t chroma.TokenType) string {
	s, ok := style[t]
	if ok {
		return s
	}
	s, ok = style[t.SubCategory()]
	if ok {
		return s
	}
	s, ok = style[t.Category()]
	if ok {
		return s
	}
	return ""
}
