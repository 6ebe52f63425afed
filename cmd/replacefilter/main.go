// Command replacefilter runs the core streaming substitution directly
// over stdin/stdout, useful for scripting and for exercising the property
// tests from the command line. Modeled on cmd/dgrep's structure.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/replacefilter/replacefilter/internal/regex"
	"github.com/replacefilter/replacefilter/internal/replace"
	"github.com/replacefilter/replacefilter/internal/version"
)

func main() {
	var pattern string
	var replacement string
	var flagsStr string
	var chunkSize int
	var displayVersion bool

	flag.StringVar(&pattern, "pattern", "", "Regular expression to replace")
	flag.StringVar(&replacement, "replacement", "", "Literal replacement text")
	flag.StringVar(&flagsStr, "flags", "", "Pattern flags: any of i, g")
	flag.IntVar(&chunkSize, "chunkSize", 4096, "Read stdin in chunks of this many bytes")
	flag.BoolVar(&displayVersion, "version", false, "Display version")
	flag.Parse()

	if displayVersion {
		if isTerminal() {
			fmt.Printf("\x1b[1;36m%s\x1b[0m\n", version.String())
		} else {
			fmt.Println(version.String())
		}
		return
	}

	if pattern == "" {
		fmt.Fprintln(os.Stderr, "replacefilter: -pattern is required")
		os.Exit(2)
	}

	flags, err := regex.ParseFlags(flagsStr)
	if err != nil {
		fatal(err)
	}
	prog, err := regex.Compile(pattern, flags)
	if err != nil {
		fatal(err)
	}

	ctx := replace.NewContext(prog, []byte(replacement), flags.Global)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	buf := make([]byte, chunkSize)
	r := bufio.NewReader(os.Stdin)

	for {
		n, readErr := r.Read(buf)
		eof := readErr == io.EOF
		if n > 0 || eof {
			emitted, _, err := ctx.Feed(buf[:n], false, eof)
			if err != nil {
				fatal(err)
			}
			out.Write(emitted)
		}
		if eof {
			break
		}
		if readErr != nil {
			fatal(readErr)
		}
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "replacefilter:", err)
	os.Exit(1)
}

// isTerminal reports whether stdout is attached to an interactive
// terminal; used to decide whether -version output gets colored.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
