package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

type rodDriver struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	pageLoad time.Duration
	log      *zap.Logger
}

// launchRod drives Chrome over CDP. It launches a local browser unless
// cfg.ControlURL points at one that is already running.
func launchRod(_ context.Context, cfg *Config, log *zap.Logger) (Driver, error) {
	d := &rodDriver{pageLoad: cfg.PageLoadTimeout, log: log}

	controlURL := cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().
			Headless(cfg.Headless).
			NoSandbox(true).
			Set(flags.Flag("disable-dev-shm-usage")).
			Set(flags.Flag("disable-gpu")).
			Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", cfg.Width, cfg.Height)).
			Set(flags.Flag("disable-blink-features"), "AutomationControlled").
			Delete(flags.Flag("enable-automation"))
		if cfg.BrowserPath != "" {
			l = l.Bin(cfg.BrowserPath)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("%w: launch chrome: %v", ErrDriverUnavailable, err)
		}
		d.launcher = l
		controlURL = u
	}
	log.Debug("connecting to browser", zap.String("control_url", controlURL))

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		_ = d.Quit()
		return nil, fmt.Errorf("%w: connect %s: %v", ErrDriverUnavailable, controlURL, err)
	}
	d.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = d.Quit()
		return nil, fmt.Errorf("%w: open page: %v", ErrDriverUnavailable, err)
	}
	d.page = page

	if err := d.ResizeWindow(cfg.Width, cfg.Height); err != nil {
		_ = d.Quit()
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	return d, nil
}

func (d *rodDriver) Get(url string) error {
	p := d.page.Timeout(d.pageLoad)
	defer p.CancelTimeout()

	if err := p.Navigate(url); err != nil {
		return err
	}
	return p.WaitLoad()
}

func (d *rodDriver) PageSource() (string, error) { return d.page.HTML() }

func (d *rodDriver) BodyText() (string, error) {
	p := d.page.Timeout(d.pageLoad)
	defer p.CancelTimeout()

	body, err := p.Element("body")
	if err != nil {
		return "", err
	}
	return body.Text()
}

func (d *rodDriver) FindElements(q Query) ([]Element, error) {
	var (
		found rod.Elements
		err   error
	)
	if q.XPath {
		found, err = d.page.ElementsX(q.Selector)
	} else {
		found, err = d.page.Elements(q.Selector)
	}
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, len(found))
	for _, el := range found {
		elements = append(elements, rodElement{el})
	}
	return elements, nil
}

func (d *rodDriver) ResizeWindow(width, height int) error {
	return d.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
}

func (d *rodDriver) CurrentURL() (string, error) {
	info, err := d.page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (d *rodDriver) Quit() error {
	var err error
	if d.browser != nil {
		if err = d.browser.Close(); err != nil {
			err = fmt.Errorf("close browser: %w", err)
		}
		d.browser = nil
	}
	if d.launcher != nil {
		d.launcher.Kill()
		d.launcher.Cleanup()
		d.launcher = nil
	}
	return err
}

type rodElement struct {
	el *rod.Element
}

func (e rodElement) Text() (string, error) { return e.el.Text() }

func (e rodElement) Attribute(name string) (string, error) {
	v, err := e.el.Attribute(name)
	if err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

func (e rodElement) Displayed() (bool, error) { return e.el.Visible() }

func (e rodElement) Click() error { return e.el.Click(proto.InputMouseButtonLeft, 1) }

func (e rodElement) SendKeys(keys string) error { return e.el.Input(keys) }
