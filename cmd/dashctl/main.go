package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ShinyNito/jobdash/cacheadmin"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "Daemon base URL")
	doStats := flag.Bool("stats", false, "Show cache statistics")
	doList := flag.Bool("list", false, "List cache entries")
	doClear := flag.Bool("clear", false, "Remove all cache entries")
	invalidateKey := flag.String("invalidate", "", "Remove a single cache key")
	pattern := flag.String("pattern", "", "Remove every cache key containing this substring")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  dashctl -stats [-addr <url>]\n")
		fmt.Fprintf(os.Stderr, "  dashctl -list [-addr <url>]\n")
		fmt.Fprintf(os.Stderr, "  dashctl -invalidate <key> [-addr <url>]\n")
		fmt.Fprintf(os.Stderr, "  dashctl -pattern <substring> [-addr <url>]\n")
		fmt.Fprintf(os.Stderr, "  dashctl -clear [-addr <url>]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	nActions := 0
	for _, set := range []bool{*doStats, *doList, *doClear, *invalidateKey != "", *pattern != ""} {
		if set {
			nActions++
		}
	}
	if nActions != 1 {
		flag.Usage()
		os.Exit(2)
	}

	httpClient := &http.Client{
		Timeout: time.Second * 10,
	}
	h := Handler{
		client: cacheadmin.NewClient(httpClient, *addr),
		out:    os.Stdout,
		err:    os.Stderr,
	}

	var err error
	switch {
	case *doStats:
		err = h.Stats()
	case *doList:
		err = h.List()
	case *doClear:
		err = h.Clear()
	case *invalidateKey != "":
		err = h.Invalidate(*invalidateKey)
	case *pattern != "":
		err = h.InvalidatePattern(*pattern)
	}
	if err != nil {
		os.Exit(1)
	}
}
