package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"cybertrack/config"
	"cybertrack/orchestrator"
)

func main() {
	feedsFlag := flag.String("feeds", "", "comma-separated feed presets or URLs (default: bc)")
	flag.Parse()

	var feeds []string
	for _, f := range strings.Split(*feedsFlag, ",") {
		if f = strings.TrimSpace(f); f != "" {
			feeds = append(feeds, f)
		}
	}

	cfg := config.Load()
	if err := orchestrator.RunOnce(context.Background(), cfg, feeds); err != nil {
		log.Fatalf("scrape run failed: %v", err)
	}
}
