package dom

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StageAttr identifies the staging container of a single resolution.
const StageAttr = "data-wemd-stage"

// stage holds a parsed HTML fragment inside a hidden container attached to a
// private document, so nothing done to it can leak anywhere else.
type stage struct {
	id        string
	doc       *html.Node
	container *html.Node
}

func newStage(fragment string) (*stage, error) {
	doc, err := html.Parse(strings.NewReader("<!DOCTYPE html><html><head></head><body></body></html>"))
	if err != nil {
		return nil, fmt.Errorf("unable to create staging document: %w", err)
	}
	body := goquery.NewDocumentFromNode(doc).Find("body").Get(0)

	s := &stage{id: uuid.NewString(), doc: doc}
	s.container = &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr: []html.Attribute{
			{Key: StageAttr, Val: s.id},
			{Key: "hidden"},
		},
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), s.container)
	if err != nil {
		return nil, fmt.Errorf("unable to parse html fragment: %w", err)
	}
	body.AppendChild(s.container)
	for _, n := range nodes {
		s.container.AppendChild(n)
	}
	return s, nil
}

// selection returns the staging container.
func (s *stage) selection() *goquery.Selection {
	return goquery.NewDocumentFromNode(s.doc).Find(fmt.Sprintf(`div[%s=%q]`, StageAttr, s.id))
}

// release detaches the container from the staging document. It is safe to
// call more than once.
func (s *stage) release() {
	if s.container.Parent != nil {
		s.container.Parent.RemoveChild(s.container)
	}
}

func (s *stage) attached() bool {
	return s.container.Parent != nil
}
