package harness

import (
	"fmt"
	"strings"
)

// By is the strategy a Locator uses to find elements.
type By string

const (
	ByTag   By = "tag"
	ByClass By = "class"
	ByID    By = "id"
	ByCSS   By = "css"
	ByXPath By = "xpath"
	ByText  By = "text"
)

// Locator identifies DOM elements. Attr narrows the match to elements whose
// attribute equals Equals (case-insensitive) or contains one of Contains.
type Locator struct {
	By       By       `yaml:"by"`
	Value    string   `yaml:"value"`
	Attr     string   `yaml:"attr,omitempty"`
	Equals   string   `yaml:"equals,omitempty"`
	Contains []string `yaml:"contains,omitempty"`
}

// Query is the backend-neutral form of a Locator: a CSS selector or an XPath.
type Query struct {
	XPath    bool
	Selector string
}

func Tag(name string) Locator { return Locator{By: ByTag, Value: name} }
func Class(name string) Locator { return Locator{By: ByClass, Value: name} }
func ID(id string) Locator { return Locator{By: ByID, Value: id} }
func CSS(sel string) Locator { return Locator{By: ByCSS, Value: sel} }
func XPath(expr string) Locator { return Locator{By: ByXPath, Value: expr} }
func TextOf(text string) Locator { return Locator{By: ByText, Value: text} }

// WithAttr returns a copy of l that only matches elements whose attr equals value.
func (l Locator) WithAttr(attr, value string) Locator {
	l.Attr = attr
	l.Equals = value
	return l
}

func (l Locator) Validate() error {
	if l.Value == "" {
		return fmt.Errorf("locator %q: empty value", l.By)
	}
	switch l.By {
	case ByTag, ByClass, ByID:
		if strings.ContainsAny(l.Value, " \t\n") {
			return fmt.Errorf("locator %s: %q must be a single name", l.By, l.Value)
		}
	case ByCSS, ByXPath, ByText:
	default:
		return fmt.Errorf("locator: unknown strategy %q", l.By)
	}
	if l.Attr == "" && (l.Equals != "" || len(l.Contains) > 0) {
		return fmt.Errorf("locator %s: attribute filter without attr", l)
	}
	if l.Attr != "" && l.Equals == "" && len(l.Contains) == 0 {
		return fmt.Errorf("locator %s: attr %q needs equals or contains", l, l.Attr)
	}
	return nil
}

func (l Locator) Query() (Query, error) {
	if err := l.Validate(); err != nil {
		return Query{}, err
	}
	switch l.By {
	case ByTag, ByCSS:
		return Query{Selector: l.Value}, nil
	case ByClass:
		return Query{Selector: "." + l.Value}, nil
	case ByID:
		return Query{Selector: "#" + l.Value}, nil
	case ByXPath:
		return Query{XPath: true, Selector: l.Value}, nil
	default:
		return Query{XPath: true, Selector: fmt.Sprintf("//*[contains(text(),%s)]", xpathLiteral(l.Value))}, nil
	}
}

// Match applies the attribute filter to el. Locators without one match everything.
func (l Locator) Match(el Element) (bool, error) {
	if l.Attr == "" {
		return true, nil
	}
	v, err := el.Attribute(l.Attr)
	if err != nil {
		return false, err
	}
	v = strings.ToLower(strings.TrimSpace(v))
	if l.Equals != "" && v == strings.ToLower(l.Equals) {
		return true, nil
	}
	for _, c := range l.Contains {
		if strings.Contains(v, strings.ToLower(c)) {
			return true, nil
		}
	}
	return false, nil
}

func (l Locator) String() string {
	s := fmt.Sprintf("%s=%s", l.By, l.Value)
	switch {
	case l.Attr != "" && l.Equals != "":
		s += fmt.Sprintf("[%s=%q]", l.Attr, l.Equals)
	case l.Attr != "":
		s += fmt.Sprintf("[%s~%q]", l.Attr, strings.Join(l.Contains, "|"))
	}
	return s
}

// xpathLiteral quotes s for use inside an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ",") + ")"
}
