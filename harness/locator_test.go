package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocatorQuery(t *testing.T) {
	tests := []struct {
		loc  Locator
		want Query
	}{
		{Tag("input"), Query{Selector: "input"}},
		{Class("auth-container"), Query{Selector: ".auth-container"}},
		{ID("root"), Query{Selector: "#root"}},
		{CSS("button.primary"), Query{Selector: "button.primary"}},
		{XPath("//button"), Query{XPath: true, Selector: "//button"}},
		{TextOf("404"), Query{XPath: true, Selector: "//*[contains(text(),'404')]"}},
		{TextOf("don't"), Query{XPath: true, Selector: `//*[contains(text(),"don't")]`}},
	}
	for _, tt := range tests {
		got, err := tt.loc.Query()
		require.NoError(t, err, tt.loc.String())
		assert.Equal(t, tt.want, got, tt.loc.String())
	}
}

func TestXPathLiteralWithBothQuotes(t *testing.T) {
	assert.Equal(t, `concat('it',"'",'s "x"')`, xpathLiteral(`it's "x"`))
}

func TestLocatorValidate(t *testing.T) {
	assert.Error(t, Locator{By: ByTag}.Validate())
	assert.Error(t, Class("menu toggle").Validate())
	assert.Error(t, Locator{By: "label", Value: "x"}.Validate())
	assert.Error(t, Locator{By: ByTag, Value: "input", Equals: "Email"}.Validate())
	assert.Error(t, Locator{By: ByTag, Value: "input", Attr: "placeholder"}.Validate())
	assert.NoError(t, Tag("input").WithAttr("placeholder", "Email").Validate())
}

func TestLocatorMatch(t *testing.T) {
	email := &fakeElement{attrs: map[string]string{"placeholder": " EMAIL "}}
	search := &fakeElement{attrs: map[string]string{"placeholder": "Search courses"}}
	bare := &fakeElement{}

	byEmail := Tag("input").WithAttr("placeholder", "Email")
	ok, err := byEmail.Match(email)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = byEmail.Match(bare)
	assert.False(t, ok)

	bySearch := Locator{By: ByTag, Value: "input", Attr: "placeholder", Contains: []string{"search", "filter"}}
	ok, _ = bySearch.Match(search)
	assert.True(t, ok)
	ok, _ = bySearch.Match(email)
	assert.False(t, ok)

	ok, _ = Tag("input").Match(bare)
	assert.True(t, ok)
}

func TestLocatorString(t *testing.T) {
	assert.Equal(t, `tag=input[placeholder="Email"]`, Tag("input").WithAttr("placeholder", "Email").String())
	assert.Equal(t, "class=SideBar", Class("SideBar").String())
}
