// Command staticlint runs the project's static analysis suite: analyzers from
// the Go toolchain, nilerr and ineffassign, the readonlytx check for writes
// inside ReadOnly transaction callbacks, and the staticcheck analyzers named in
// config.json.
//
// config.json is looked up in the working directory first and next to the
// executable second. Without one, only the always-on analyzers run:
//
//	{"Staticcheck": ["SA1000", "SA4006"]}
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/staticcheck"

	"github.com/patric-chuzhbe/userstore/cmd/staticlint/readonlytx"
)

// configFileName is the file listing the enabled staticcheck analyzers.
const configFileName = "config.json"

// ConfigData describes the configuration file. Staticcheck holds analyzer
// names such as "SA1000" or "SA4010".
type ConfigData struct {
	Staticcheck []string
}

// configSearchPaths returns the candidate config.json locations in lookup order.
func configSearchPaths() []string {
	paths := []string{configFileName}

	if executable, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(executable), configFileName))
	}

	return paths
}

// loadConfig reads the first existing file of paths. found is false when none
// of them exists; a file that exists but does not parse is an error.
func loadConfig(paths ...string) (cfg ConfigData, found bool, err error) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return ConfigData{}, false, err
		}

		if err := json.Unmarshal(data, &cfg); err != nil {
			return ConfigData{}, false, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		return cfg, true, nil
	}

	return ConfigData{}, false, nil
}

// alwaysOn returns the analyzers that run regardless of config.json.
func alwaysOn() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		copylock.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,

		ineffassign.Analyzer,
		nilerr.Analyzer,

		readonlytx.Analyzer,
	}
}

// collectAnalyzers returns the always-on analyzers plus the staticcheck
// analyzers enabled by cfg. Unknown names are returned separately.
func collectAnalyzers(cfg ConfigData) (checks []*analysis.Analyzer, unknown []string) {
	checks = alwaysOn()

	enabled := make(map[string]bool, len(cfg.Staticcheck))
	for _, name := range cfg.Staticcheck {
		enabled[name] = true
	}

	for _, v := range staticcheck.Analyzers {
		if enabled[v.Analyzer.Name] {
			checks = append(checks, v.Analyzer)
			delete(enabled, v.Analyzer.Name)
		}
	}

	for name := range enabled {
		unknown = append(unknown, name)
	}

	return checks, unknown
}

func main() {
	cfg, found, err := loadConfig(configSearchPaths()...)
	if err != nil {
		log.Fatalf("staticlint: %v", err)
	}
	if !found {
		log.Printf("staticlint: %s not found, running the default analyzers only", configFileName)
	}

	checks, unknown := collectAnalyzers(cfg)
	for _, name := range unknown {
		log.Printf("staticlint: unknown staticcheck analyzer %q ignored", name)
	}

	multichecker.Main(checks...)
}
