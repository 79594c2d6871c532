package browser

import "context"

// Download identifies a completed browser download awaiting persistence.
type Download struct {
	// GUID names the payload file inside the session's download directory.
	GUID string
	// SuggestedFilename is the name the remote service proposed.
	SuggestedFilename string
}

// Driver is the page-automation capability the generation state machine
// consumes. Every method honors context cancellation and deadlines; waits
// for element readiness are bounded by the caller's context.
type Driver interface {
	// Navigate loads url on the session's page, waiting until the document
	// is ready.
	Navigate(ctx context.Context, url string) error

	// Upload attaches filePath to the file-input control matching selector.
	Upload(ctx context.Context, selector, filePath string) error

	// Fill types value into the input matching selector.
	Fill(ctx context.Context, selector, value string) error

	// ClickText clicks the first element matching selector whose text
	// content contains text.
	ClickText(ctx context.Context, selector, text string) error

	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error

	// SelectOption sets the select control matching selector to value and
	// fires the change event.
	SelectOption(ctx context.Context, selector, value string) error

	// DragSlider presses at fromFrac of the matched element's width, moves
	// in discrete steps to toFrac at the same vertical center, and
	// releases.
	DragSlider(ctx context.Context, selector string, fromFrac, toFrac float64, steps int) error

	// ArmDownload registers interest in the next download the page starts.
	// It must be called before the interaction that triggers the download;
	// the returned channel delivers at most one Download.
	ArmDownload() (<-chan Download, error)

	// SaveDownload persists a completed download under its suggested name
	// in destDir and returns the final path.
	SaveDownload(ctx context.Context, dl Download, destDir string) (string, error)
}
