package locator

import (
	"fmt"
	"strings"
)

// Node is the read-only view of a rendered page the extraction core needs.
type Node interface {
	// Find returns the first descendant matching selector.
	Find(selector string) (Node, bool)
	// FindAll returns every descendant matching selector in document order.
	FindAll(selector string) []Node
	// Text returns the trimmed text content.
	Text() string
	Attr(name string) (string, bool)
}

// Locator is one way to find a field, tagged with the markup version it targets.
type Locator struct {
	Version  string
	Selector string
}

// Chain is the ordered list of locators for one field, newest markup first.
type Chain struct {
	Field    string
	Locators []Locator
}

func NewChain(field string, locators ...Locator) Chain {
	return Chain{
		Field:    field,
		Locators: locators,
	}
}

// With returns a copy of the chain with extra locators appended after the existing ones.
func (c Chain) With(locators ...Locator) Chain {
	res := make([]Locator, 0, len(c.Locators)+len(locators))
	res = append(res, c.Locators...)
	res = append(res, locators...)
	return Chain{
		Field:    c.Field,
		Locators: res,
	}
}

type FieldNotFoundError struct {
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found", e.Field)
}

// Resolve returns the node matched by the first locator of the chain that matches anything.
func Resolve(node Node, chain Chain) (Node, error) {
	if node == nil {
		return nil, &FieldNotFoundError{Field: chain.Field}
	}
	for _, l := range chain.Locators {
		if found, ok := node.Find(l.Selector); ok {
			return found, nil
		}
	}
	return nil, &FieldNotFoundError{Field: chain.Field}
}

// ResolveText is Resolve followed by Text. A match with blank text counts as not found.
func ResolveText(node Node, chain Chain) (string, error) {
	found, err := Resolve(node, chain)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(found.Text())
	if text == "" {
		return "", &FieldNotFoundError{Field: chain.Field}
	}
	return text, nil
}

// ResolveAll returns the nodes of the first locator that yields a non-empty set.
// An empty result is not an error; callers decide whether zero matches is fatal.
func ResolveAll(node Node, chain Chain) []Node {
	if node == nil {
		return nil
	}
	for _, l := range chain.Locators {
		if found := node.FindAll(l.Selector); len(found) > 0 {
			return found
		}
	}
	return nil
}
