// Package browser abstracts the controllable headless-browser page the
// generation pipeline drives.
//
// The remote service exposes no API, only a web UI, so generation is a
// sequence of UI interactions. Driver is the capability the state machine
// consumes; Session implements it on a real Chrome instance via the DevTools
// protocol (chromedp). Tests substitute a fake Driver, keeping the step
// sequence and per-step failure policy testable without a browser.
package browser
