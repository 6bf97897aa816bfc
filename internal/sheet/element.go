package sheet

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// Element is a generic parsed-XML node: tag name, attributes and child
// elements in document order. Elements are transient; collectors turn
// them into model records immediately after parsing.
type Element struct {
	Name     string
	Attr     map[string]string
	Children []Element
}

// attr returns the named attribute and whether it was present.
// Safe on an Element with a nil attribute map.
func (e Element) attr(name string) (string, bool) {
	v, ok := e.Attr[name]
	return v, ok
}

// ParseSheet parses r as an XML sheet and returns the children of the
// top-level element. Comments, processing instructions and character
// data are ignored; malformed XML is returned as an error.
func ParseSheet(r io.Reader) ([]Element, error) {
	dec := xml.NewDecoder(r)

	var root *Element
	var stack []*Element

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				el.Attr = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					el.Attr[a.Name.Local] = a.Value
				}
			}
			stack = append(stack, el)

		case xml.EndElement:
			el := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				if root == nil {
					root = el
				}
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, *el)
			}
		}
	}

	if root == nil {
		return nil, errors.New("decoding xml: no top-level element")
	}
	return root.Children, nil
}
