// Command replacefilterd is a small demo HTTP server that wires the
// replace_filter body filter end to end: it either proxies to an upstream
// server or serves a built-in demo page, rewriting every matching response
// body on the fly. Modeled on cmd/dcat's flag-parsing / logger-start /
// graceful-shutdown skeleton.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/replacefilter/replacefilter/internal/bodyfilter"
	"github.com/replacefilter/replacefilter/internal/config"
	"github.com/replacefilter/replacefilter/internal/io/signal"
	"github.com/replacefilter/replacefilter/internal/logger"
	"github.com/replacefilter/replacefilter/internal/version"
)

func main() {
	var args config.Args
	var addr string
	var upstream string
	var logDir string
	var logToFile bool
	var quiet bool
	var displayVersion bool

	flag.StringVar(&args.ConfigFile, "cfg", "", "Config file path (YAML or .json)")
	flag.StringVar(&args.Pattern, "pattern", "", "Regular expression to replace")
	flag.StringVar(&args.Replacement, "replacement", "", "Literal replacement text")
	flag.StringVar(&args.Flags, "flags", "", "Pattern flags: any of i, g")
	flag.StringVar(&args.Types, "types", "", "Comma-separated MIME types to filter (default text/html)")
	flag.StringVar(&addr, "addr", ":8080", "Address to listen on")
	flag.StringVar(&upstream, "upstream", "", "Upstream URL to reverse-proxy; serves a built-in demo page if empty")
	flag.StringVar(&logDir, "logDir", "", "Log directory; logs to stdout only if empty")
	flag.BoolVar(&logToFile, "logToFile", false, "Additionally log to a daily file under -logDir")
	flag.BoolVar(&quiet, "quiet", false, "Quiet output mode")
	flag.BoolVar(&displayVersion, "version", false, "Display version")
	flag.Parse()

	if displayVersion {
		log.Println(version.String())
		return
	}

	config.Setup(args)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Start(ctx, logger.Mode{Quiet: quiet, ToFile: logToFile && logDir != "", Dir: logDir})
	logger.Info("starting", version.String())

	filter, err := bodyfilter.New(config.Filter.Filter, config.Filter.Types)
	if err != nil {
		logger.FatalExit("configuring filter", err)
	}

	handler := filter.Wrap(demoOrProxyHandler(upstream))

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		logger.Info("listening", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalExit("serve", err)
		}
	}()

	<-signal.ShutdownCh(ctx)
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", err)
	}
}

func demoOrProxyHandler(upstream string) http.Handler {
	if upstream == "" {
		return http.HandlerFunc(demoHandler)
	}
	target, err := url.Parse(upstream)
	if err != nil {
		log.Fatalf("invalid -upstream %q: %v", upstream, err)
	}
	return httputil.NewSingleHostReverseProxy(target)
}

const demoBody = `<!DOCTYPE html>
<html>
<head><title>replace_filter demo</title></head>
<body>
<h1>Hello, world!</h1>
<p>This response body is rewritten on the fly by the configured pattern.</p>
</body>
</html>
`

func demoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(demoBody))
}
