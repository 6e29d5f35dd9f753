package model

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ParseError describes a problem with a timeline file.
type ParseError struct {
	Msg  string
	Line int
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", err.Line, err.Msg)
}

// Parse reads a timeline from its Markdown representation. The format looks like this
//
//	# Videos
//
//	- <name> [| sound]
//
//	# Audios
//
//	- <name> | <artist> | <volume>
//
//	# Effects
//
//	- <name> [| <icon>]
//
// Headings select the section for the list items that follow. Anything that is neither a heading
// nor a list item is ignored.
func Parse(data []byte) (Timeline, error) {
	root := goldmark.New().Parser().Parse(text.NewReader(data))

	p := parser{source: data, section: -1}
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			err := p.heading(n)
			p.advance(n)
			return ast.WalkSkipChildren, err
		case *ast.ListItem:
			err := p.item(n)
			p.advance(n)
			return ast.WalkSkipChildren, err
		}
		if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
			p.advance(n) // prose and other text outside of items
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return Timeline{}, err
	}
	return p.timeline, nil
}

type parser struct {
	source   []byte
	section  Section
	timeline Timeline

	end  int  // end of the last text segment seen so far
	seen bool // whether end is set
}

func (p *parser) heading(n *ast.Heading) error {
	s, err := ParseSection(strings.TrimSpace(p.text(n)))
	if err != nil {
		return p.errorf(n, "%v", err)
	}
	p.section = s
	return nil
}

func (p *parser) item(n *ast.ListItem) error {
	block := n.FirstChild()
	if block == nil {
		return nil // empty item
	}
	if p.section < 0 {
		return p.errorf(block, "list item outside of a section")
	}
	switch block.Kind() {
	case ast.KindParagraph, ast.KindTextBlock:
	default:
		return p.errorf(block, "list item must be plain text")
	}
	if next := block.NextSibling(); next != nil {
		return p.errorf(next, "list item must be plain text")
	}

	fields := strings.Split(p.text(block), "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if fields[0] == "" {
		return p.errorf(block, "missing name")
	}

	switch p.section {
	case Videos:
		v := Video{Name: fields[0]}
		switch {
		case len(fields) == 1:
		case len(fields) == 2 && fields[1] == "sound":
			v.HasSound = true
		case len(fields) == 2 && fields[1] == "silent":
		default:
			return p.errorf(block, "video must be <name> [| sound]")
		}
		p.timeline.Videos = append(p.timeline.Videos, v)
	case Audios:
		if len(fields) != 3 {
			return p.errorf(block, "audio must be <name> | <artist> | <volume>")
		}
		vol, err := strconv.ParseFloat(fields[2], 64)
		if err != nil || !(vol >= 0 && vol <= 1) {
			return p.errorf(block, "volume must be a number between 0 and 1, got %q", fields[2])
		}
		p.timeline.Audios = append(p.timeline.Audios, Audio{Name: fields[0], Artist: fields[1], Volume: vol})
	case Effects:
		e := Effect{Name: fields[0]}
		switch len(fields) {
		case 1:
		case 2:
			e.IconName = fields[1]
		default:
			return p.errorf(block, "effect must be <name> [| <icon>]")
		}
		p.timeline.Effects = append(p.timeline.Effects, e)
	}
	return nil
}

// text returns the raw source lines of n joined by spaces.
func (p *parser) text(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := range lines.Len() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		seg := lines.At(i)
		sb.Write(bytes.TrimRight(seg.Value(p.source), "\r\n"))
	}
	return sb.String()
}

// advance records the end of the text of n and all blocks below it.
func (p *parser) advance(n ast.Node) {
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Type() != ast.TypeBlock {
			return ast.WalkSkipChildren, nil
		}
		if lines := n.Lines(); lines.Len() > 0 {
			if stop := lines.At(lines.Len() - 1).Stop; !p.seen || stop > p.end {
				p.end = stop
				p.seen = true
			}
		}
		return ast.WalkContinue, nil
	})
}

func (p *parser) errorf(n ast.Node, format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Line: p.line(n)}
}

// line returns the line number of the first text in n. Blocks without any text, like an empty
// list or a link reference definition, are located on the first non-blank line after the text
// seen so far.
func (p *parser) line(n ast.Node) int {
	start := -1
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Type() != ast.TypeBlock {
			return ast.WalkSkipChildren, nil
		}
		if lines := n.Lines(); lines.Len() > 0 {
			start = lines.At(0).Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if start < 0 {
		start = p.nextLine()
	}
	return bytes.Count(p.source[:start], []byte("\n")) + 1
}

// nextLine returns the offset of the first non-blank line after the text seen so far.
func (p *parser) nextLine() int {
	i := 0
	if p.seen {
		i = p.end
		if i == 0 || p.source[i-1] != '\n' {
			j := bytes.IndexByte(p.source[i:], '\n')
			if j < 0 {
				return len(p.source)
			}
			i += j + 1
		}
	}
	for i < len(p.source) {
		j := bytes.IndexByte(p.source[i:], '\n')
		if j < 0 || len(bytes.TrimSpace(p.source[i:i+j])) > 0 {
			break
		}
		i += j + 1
	}
	return i
}

// Format writes the Markdown representation of t, the inverse of [Parse].
func Format(t Timeline) ([]byte, error) {
	var buf bytes.Buffer
	for i, s := range Sections {
		if i > 0 {
			buf.WriteByte('\n')
		}
		heading := "# " + title(s) + "\n"
		buf.WriteString(heading)
		els := t.Elements(s)
		if len(els) > 0 {
			buf.WriteByte('\n')
		}
		for _, el := range els {
			var fields []string
			switch el := el.(type) {
			case Video:
				fields = []string{el.Name}
				if el.HasSound {
					fields = append(fields, "sound")
				}
			case Audio:
				fields = []string{el.Name, el.Artist, formatVolume(el.Volume)}
			case Effect:
				fields = []string{el.Name}
				if el.IconName != "" {
					fields = append(fields, el.IconName)
				}
			}
			for _, f := range fields {
				if f == "" || f != strings.TrimSpace(f) || strings.ContainsAny(f, "|\r\n") {
					return nil, fmt.Errorf("cannot format %v %q: invalid field %q", s.Singular(), el, f)
				}
			}
			item := "- " + strings.Join(fields, " | ") + "\n"
			if err := checkItem(heading+"\n"+item, el); err != nil {
				return nil, fmt.Errorf("cannot format %v %q: %v", s.Singular(), el, err)
			}
			buf.WriteString(item)
		}
	}
	return buf.Bytes(), nil
}

// checkItem verifies that the single item in doc reads back as el. Names that look like Markdown
// block syntax, e.g. "# Intro" or "1. First", don't.
func checkItem(doc string, el Element) error {
	t, err := Parse([]byte(doc))
	if err != nil {
		return err
	}
	got := t.Elements(el.Section())
	if len(got) != 1 || got[0] != el {
		return fmt.Errorf("reads back as %v", got)
	}
	return nil
}

func title(s Section) string {
	name := s.String()
	return strings.ToUpper(name[:1]) + name[1:]
}
