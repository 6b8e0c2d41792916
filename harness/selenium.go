package harness

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"go.uber.org/zap"
)

type seleniumDriver struct {
	service *selenium.Service
	wd      selenium.WebDriver
	log     *zap.Logger
}

/*
launchSelenium starts chromedriver locally, or connects to cfg.RemoteURL when a
Selenium server is already running somewhere else.
*/
func launchSelenium(_ context.Context, cfg *Config, log *zap.Logger) (Driver, error) {
	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{
		Path:            cfg.BrowserPath,
		Args:            chromeArgs(cfg),
		ExcludeSwitches: []string{"enable-automation"},
		W3C:             true,
	})

	d := &seleniumDriver{log: log}
	urlPrefix := cfg.RemoteURL
	if urlPrefix == "" {
		path, err := exec.LookPath(cfg.DriverPath)
		if err != nil {
			return nil, fmt.Errorf("%w: chromedriver %q not found: %v", ErrDriverUnavailable, cfg.DriverPath, err)
		}
		d.service, err = selenium.NewChromeDriverService(path, cfg.DriverPort)
		if err != nil {
			return nil, fmt.Errorf("%w: start chromedriver: %v", ErrDriverUnavailable, err)
		}
		urlPrefix = fmt.Sprintf("http://127.0.0.1:%d/wd/hub", cfg.DriverPort)
	}
	log.Debug("opening selenium session", zap.String("url", urlPrefix), zap.Strings("args", chromeArgs(cfg)))

	wd, err := selenium.NewRemote(caps, urlPrefix)
	if err != nil {
		d.stopService()
		return nil, fmt.Errorf("%w: new session at %s: %v", ErrDriverUnavailable, urlPrefix, err)
	}
	d.wd = wd

	if err := wd.SetPageLoadTimeout(cfg.PageLoadTimeout); err != nil {
		_ = d.Quit()
		return nil, fmt.Errorf("set page load timeout: %w", err)
	}
	return d, nil
}

func (d *seleniumDriver) Get(url string) error { return d.wd.Get(url) }

func (d *seleniumDriver) PageSource() (string, error) { return d.wd.PageSource() }

func (d *seleniumDriver) BodyText() (string, error) {
	body, err := d.wd.FindElement(selenium.ByTagName, "body")
	if err != nil {
		return "", err
	}
	return body.Text()
}

func (d *seleniumDriver) FindElements(q Query) ([]Element, error) {
	by := selenium.ByCSSSelector
	if q.XPath {
		by = selenium.ByXPATH
	}
	found, err := d.wd.FindElements(by, q.Selector)
	if err != nil {
		if isNoSuchElement(err) {
			return nil, nil
		}
		return nil, err
	}
	elements := make([]Element, 0, len(found))
	for _, el := range found {
		elements = append(elements, seleniumElement{el})
	}
	return elements, nil
}

func (d *seleniumDriver) ResizeWindow(width, height int) error {
	handle, err := d.wd.CurrentWindowHandle()
	if err != nil {
		return err
	}
	return d.wd.ResizeWindow(handle, width, height)
}

func (d *seleniumDriver) CurrentURL() (string, error) { return d.wd.CurrentURL() }

func (d *seleniumDriver) Quit() error {
	var quitErr error
	if d.wd != nil {
		if err := d.wd.Quit(); err != nil {
			if strings.Contains(err.Error(), "invalid session id") {
				d.log.Warn("session already gone", zap.Error(err))
			} else {
				quitErr = fmt.Errorf("quit driver: %w", err)
			}
		}
	}
	d.stopService()
	return quitErr
}

func (d *seleniumDriver) stopService() {
	if d.service == nil {
		return
	}
	if err := d.service.Stop(); err != nil {
		d.log.Warn("stopping chromedriver", zap.Error(err))
	}
	d.service = nil
}

func isNoSuchElement(err error) bool {
	return strings.Contains(err.Error(), "no such element")
}

type seleniumElement struct {
	el selenium.WebElement
}

func (e seleniumElement) Text() (string, error) { return e.el.Text() }

func (e seleniumElement) Attribute(name string) (string, error) {
	v, err := e.el.GetAttribute(name)
	// selenium reports an unset attribute as a nil return value
	if err != nil && strings.Contains(err.Error(), "nil return value") {
		return "", nil
	}
	return v, err
}

func (e seleniumElement) Displayed() (bool, error) { return e.el.IsDisplayed() }

func (e seleniumElement) Click() error { return e.el.Click() }

func (e seleniumElement) SendKeys(keys string) error { return e.el.SendKeys(keys) }
