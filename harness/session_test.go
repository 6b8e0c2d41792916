package harness

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStartSessionDriverUnavailable(t *testing.T) {
	launch := func(context.Context, *Config, *zap.Logger) (Driver, error) {
		return nil, fmt.Errorf("%w: chromedriver %q not found", ErrDriverUnavailable, "chromedriver")
	}
	s, err := StartSessionWith(context.Background(), testConfig(), nil, launch)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrDriverUnavailable)
}

func TestStartSessionRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.BaseURL = "not a url"
	d := newFakeDriver()
	_, err := StartSessionWith(context.Background(), cfg, nil, fakeLauncher(d))
	assert.Error(t, err)
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	d := newFakeDriver()
	s := newFakeSession(testConfig(), d)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, d.quits)

	assert.ErrorIs(t, s.Navigate("/user"), ErrSessionClosed)
	_, err := s.Find(Tag("input"))
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSessionCloseReportsQuitError(t *testing.T) {
	d := newFakeDriver()
	d.quitErr = errors.New("chrome crashed")
	s := newFakeSession(testConfig(), d)

	assert.Error(t, s.Close())
	assert.NoError(t, s.Close())
	assert.Equal(t, 1, d.quits)
}

func TestNavigateJoinsBaseURL(t *testing.T) {
	d := newFakeDriver()
	s := newFakeSession(testConfig(), d)

	require.NoError(t, s.Navigate("/user/quiz"))
	assert.Equal(t, []string{"http://learnify.test/user/quiz"}, d.visited)

	d.getErr = errors.New("timeout")
	assert.ErrorContains(t, s.Navigate("/admin"), "http://learnify.test/admin")
}

func TestAssertPresence(t *testing.T) {
	d := newFakeDriver().page("http://learnify.test", &fakePage{
		elements: map[string][]*fakeElement{".auth-container": {{}}},
	})
	s := newFakeSession(testConfig(), d)
	require.NoError(t, s.Navigate("/"))

	assert.Equal(t, Result{}, s.AssertPresence(Class("auth-container"), Strict))

	res := s.AssertPresence(Class("SideBar"), Strict)
	assert.True(t, res.Failed)
	assert.Equal(t, "class=SideBar should exist", res.Message)

	res = s.AssertPresence(Class("SideBar"), Soft)
	assert.False(t, res.Failed)
	assert.Equal(t, "class=SideBar should exist", res.Message)
}

func TestFindFiltersByAttribute(t *testing.T) {
	email := &fakeElement{attrs: map[string]string{"placeholder": "email"}}
	password := &fakeElement{attrs: map[string]string{"placeholder": "Password"}}
	d := newFakeDriver().page("http://learnify.test", &fakePage{
		elements: map[string][]*fakeElement{"input": {password, email}},
	})
	s := newFakeSession(testConfig(), d)
	require.NoError(t, s.Navigate("/"))

	found, err := s.Find(Tag("input").WithAttr("placeholder", "Email"))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Same(t, email, found[0])

	res := s.AssertCount(Tag("input"), 3, Strict, "")
	assert.True(t, res.Failed)
	assert.Contains(t, res.Message, "found 2")
}

func TestAssertTextAndSource(t *testing.T) {
	d := newFakeDriver().page("http://learnify.test", &fakePage{
		source: "<h1>404 - Not Found</h1>",
		elements: map[string][]*fakeElement{"button": {
			{text: "  "}, {text: "Sign up"}, {text: "LOGIN"},
		}},
	})
	s := newFakeSession(testConfig(), d)
	require.NoError(t, s.Navigate("/"))

	assert.False(t, s.AssertText(Tag("button"), []string{"login"}, Strict, "").Failed)
	res := s.AssertText(Tag("button"), []string{"logout"}, Strict, "")
	assert.True(t, res.Failed)
	assert.Contains(t, res.Message, "Sign up")

	assert.False(t, s.AssertSource([]string{"not found"}, Strict, "").Failed)
	assert.True(t, s.AssertSource([]string{"page you are looking for"}, Strict, "custom").Failed)
}

func TestWaitHidden(t *testing.T) {
	spinner := &fakeElement{}
	polls := 0
	d := newFakeDriver()
	d.find = func(q Query) []Element {
		polls++
		if polls == 3 {
			spinner.hidden = true
		}
		return []Element{spinner}
	}
	s := newFakeSession(testConfig(), d)

	require.NoError(t, s.WaitHidden(context.Background(), Class("ClipLoader")))
	assert.Equal(t, 3, polls)
}

func TestWaitPresentTimesOut(t *testing.T) {
	s := newFakeSession(testConfig(), newFakeDriver())
	err := s.WaitPresent(context.Background(), Class("Auth"))
	assert.ErrorIs(t, err, ErrWaitTimeout)
}

func TestSettleWithoutSignalSleeps(t *testing.T) {
	cfg := testConfig()
	s := newFakeSession(cfg, newFakeDriver())
	start := time.Now()
	require.NoError(t, s.Settle(context.Background(), nil, nil, 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWithViewportRestoresSize(t *testing.T) {
	d := newFakeDriver()
	s := newFakeSession(testConfig(), d)

	err := s.WithViewport(375, 667, func() error { return errors.New("check failed") })
	assert.EqualError(t, err, "check failed")
	assert.Equal(t, [][2]int{{375, 667}, {1280, 720}}, d.sizes)

	d.sizes = nil
	assert.Panics(t, func() {
		_ = s.WithViewport(375, 667, func() error { panic("boom") })
	})
	assert.Equal(t, [][2]int{{375, 667}, {1280, 720}}, d.sizes)
}

func TestClickChecksURL(t *testing.T) {
	d := newFakeDriver()
	link := &fakeElement{text: "Available Courses"}
	link.onClick = func() { d.current = "http://learnify.test/user/available-courses" }
	d.page("http://learnify.test/user", &fakePage{
		elements: map[string][]*fakeElement{"//a": {link}},
	})
	s := newFakeSession(testConfig(), d)
	require.NoError(t, s.Navigate("/user"))

	res := s.Click(context.Background(), XPath("//a"), []string{"courses"}, Strict, "")
	assert.False(t, res.Failed, res.Message)
	assert.Equal(t, 1, link.clicks)

	res = s.Click(context.Background(), XPath("//nav"), nil, Soft, "no nav")
	assert.Equal(t, Result{Message: "no nav"}, res)
}

func TestTypePrefersDisplayedElement(t *testing.T) {
	hidden := &fakeElement{hidden: true, attrs: map[string]string{"placeholder": "Search"}}
	visible := &fakeElement{attrs: map[string]string{"placeholder": "Filter courses"}}
	d := newFakeDriver().page("http://learnify.test/user/all-courses", &fakePage{
		elements: map[string][]*fakeElement{"input": {hidden, visible}},
	})
	s := newFakeSession(testConfig(), d)
	require.NoError(t, s.Navigate("/user/all-courses"))

	search := Locator{By: ByTag, Value: "input", Attr: "placeholder", Contains: []string{"search", "filter"}}
	res := s.Type(context.Background(), search, "Python", Strict, "")
	assert.False(t, res.Failed)
	assert.Equal(t, "Python", visible.typed)
	assert.Empty(t, hidden.typed)
}
