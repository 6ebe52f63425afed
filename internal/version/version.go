// Package version provides version and protocol-compatibility information
// for the replace filter's command-line tools.
//
// Grounded on the teacher's internal/version, minus its color-formatted
// PaintedString: the retrieval pack this module was built from does not
// carry the internal/color package several teacher files import, and
// terminal coloring has no analogue in this domain's core filtering logic
// (the one place a terminal matters, the CLI's -version output, decides
// whether to color using golang.org/x/term directly — see cmd/replacefilter).
package version

import "fmt"

const (
	// Name of this tool family.
	Name string = "replacefilter"
	// Version of this module.
	Version string = "1.0.0"
	// DirectiveVersion is the configuration-directive compatibility
	// version: a bump here means replace_filter directive syntax changed
	// in a way older config files cannot express.
	DirectiveVersion string = "1"
)

// String returns a plain text representation suitable for logging and
// non-terminal output.
func String() string {
	return fmt.Sprintf("%s %s (directive v%s)", Name, Version, DirectiveVersion)
}
