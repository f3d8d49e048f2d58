// Package main provides the smartfind runner. It resolves the configured
// elements of a project against live browser pages, one browser per worker,
// healing broken locators through the suggestion service when every
// candidate fails.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	EnvFile     string
	Project     string
	APIKey      string
	BaseURL     string
	Model       string
	URL         string
	Match       string
	ResultsDir  string
	Workers     int
	Timeout     time.Duration
	ShowVersion bool
}

// Patterns splits -match into glob patterns.
func (c *CLIConfig) Patterns() []string {
	var out []string
	for _, p := range strings.Split(c.Match, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("smartfind v%s\n", version)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	failed, err := run(ctx, config, os.Stdout)
	cancel()
	if err != nil {
		log.Printf("Execution failed: %v", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	config := &CLIConfig{}

	flag.StringVar(&config.ConfigFile, "config", "", "Path to configuration file (default smartfind.yaml when present)")
	flag.StringVar(&config.EnvFile, "env-file", ".env", "Path to a .env file to load")
	flag.StringVar(&config.Project, "project", "", "Project to run (overrides SMARTFIND_PROJECT and active_project)")
	flag.StringVar(&config.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY)")
	flag.StringVar(&config.BaseURL, "base-url", "", "OpenAI API base URL")
	flag.StringVar(&config.Model, "model", "", "LLM model used for locator suggestions")
	flag.StringVar(&config.URL, "url", "", "Page to open instead of the project's base_url")
	flag.StringVar(&config.Match, "match", "", "Comma-separated glob patterns selecting elements")
	flag.StringVar(&config.ResultsDir, "results", "", "Directory for report attachments")
	flag.IntVar(&config.Workers, "workers", 1, "Number of parallel browser sessions")
	flag.DurationVar(&config.Timeout, "timeout", 10*time.Minute, "Overall execution timeout")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "smartfind - resilient element resolution for browser tests\n\n")
		fmt.Fprintf(os.Stderr, "Usage: smartfind [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Resolve every element of the active project\n")
		fmt.Fprintf(os.Stderr, "  smartfind -config smartfind.yaml\n\n")
		fmt.Fprintf(os.Stderr, "  # Only the login elements, on four browsers\n")
		fmt.Fprintf(os.Stderr, "  smartfind -project github -match 'login*,username' -workers 4\n\n")
	}

	flag.Parse()
	return config
}
