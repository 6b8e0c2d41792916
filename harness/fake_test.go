package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type fakeElement struct {
	text    string
	attrs   map[string]string
	hidden  bool
	clicks  int
	typed   string
	onClick func()
	panics  bool
}

func (e *fakeElement) Text() (string, error) {
	if e.panics {
		panic("element exploded")
	}
	return e.text, nil
}

func (e *fakeElement) Attribute(name string) (string, error) { return e.attrs[name], nil }

func (e *fakeElement) Displayed() (bool, error) { return !e.hidden, nil }

func (e *fakeElement) Click() error {
	e.clicks++
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) SendKeys(keys string) error {
	e.typed += keys
	return nil
}

type fakePage struct {
	source   string
	body     string
	elements map[string][]*fakeElement
}

type fakeDriver struct {
	pages   map[string]*fakePage
	current string
	visited []string
	sizes   [][2]int
	quits   int
	getErr  error
	quitErr error
	// find overrides page lookups when set
	find func(q Query) []Element
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{pages: map[string]*fakePage{}}
}

func (d *fakeDriver) page(url string, p *fakePage) *fakeDriver {
	if p.elements == nil {
		p.elements = map[string][]*fakeElement{}
	}
	d.pages[url] = p
	return d
}

func (d *fakeDriver) Get(url string) error {
	if d.getErr != nil {
		return d.getErr
	}
	d.current = url
	d.visited = append(d.visited, url)
	return nil
}

func (d *fakeDriver) PageSource() (string, error) {
	if p, ok := d.pages[d.current]; ok {
		return p.source, nil
	}
	return "", nil
}

func (d *fakeDriver) BodyText() (string, error) {
	if p, ok := d.pages[d.current]; ok {
		return p.body, nil
	}
	return "", errors.New("no body")
}

func (d *fakeDriver) FindElements(q Query) ([]Element, error) {
	if d.find != nil {
		return d.find(q), nil
	}
	p, ok := d.pages[d.current]
	if !ok {
		return nil, nil
	}
	var found []Element
	for _, el := range p.elements[q.Selector] {
		found = append(found, el)
	}
	return found, nil
}

func (d *fakeDriver) ResizeWindow(width, height int) error {
	d.sizes = append(d.sizes, [2]int{width, height})
	return nil
}

func (d *fakeDriver) CurrentURL() (string, error) { return d.current, nil }

func (d *fakeDriver) Quit() error {
	d.quits++
	return d.quitErr
}

func testConfig() *Config {
	cfg := NewConfig()
	cfg.BaseURL = "http://learnify.test"
	cfg.SettleDelay = time.Millisecond
	cfg.WaitTimeout = 50 * time.Millisecond
	cfg.PollInterval = 5 * time.Millisecond
	return cfg
}

func fakeLauncher(d Driver) LaunchFunc {
	return func(context.Context, *Config, *zap.Logger) (Driver, error) { return d, nil }
}

func newFakeSession(cfg *Config, d *fakeDriver) *Session {
	s, err := StartSessionWith(context.Background(), cfg, zap.NewNop(), fakeLauncher(d))
	if err != nil {
		panic(fmt.Sprintf("fake session: %v", err))
	}
	return s
}

func html(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}

func reachable(context.Context, string, time.Duration) bool { return true }
func unreachable(context.Context, string, time.Duration) bool { return false }
