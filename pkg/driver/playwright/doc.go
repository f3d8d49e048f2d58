// Package playwright implements the driver interfaces on top of
// playwright-go.
//
// A SessionManager owns the Playwright runtime. Each session it starts is a
// separate browser (Chromium, Firefox or WebKit) with one page, so workers
// never share browser state:
//
//	manager := playwright.NewSessionManager(logger)
//	if err := manager.Initialize(playwright.Chromium); err != nil {
//	    return err
//	}
//	defer manager.Shutdown()
//
//	session, err := manager.StartSession(ctx, "worker-1", playwright.SessionOptions{
//	    Headless: true,
//	    BaseURL:  "https://github.com/login",
//	})
//
// Element lookups translate locators with driver.Translate and query the page
// once, without auto-waiting, so a miss is reported immediately and the
// resolver can move on to the next candidate.
package playwright
