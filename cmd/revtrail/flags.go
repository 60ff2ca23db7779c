package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/aleister1102/revtrail/internal/config"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// AppFlags holds the parsed command line
type AppFlags struct {
	GlobalConfigFile string
	Mode             string
	Slug             string
	Output           string
}

// ParseFlags parses args (without the program name). Long flags win over their aliases.
func ParseFlags(args []string, stderr io.Writer) (AppFlags, error) {
	fs := flag.NewFlagSet("revtrail", flag.ContinueOnError)
	fs.SetOutput(stderr)

	globalConfigFile := fs.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := fs.String("c", "", "Alias for -config")

	modeFlag := fs.String("mode", "", "Mode to run the tool: list, history or export (overrides config file if set)")
	modeFlagAlias := fs.String("m", "", "Alias for -mode")

	slugFlag := fs.String("slug", "", "Writing to operate on (required for history; export archives every writing when empty)")
	slugFlagAlias := fs.String("s", "", "Alias for -slug")

	outputFlag := fs.String("output", outputText, "Output format: text or json")
	outputFlagAlias := fs.String("o", "", "Alias for -output")

	if err := fs.Parse(args); err != nil {
		return AppFlags{}, err
	}

	flags := AppFlags{
		GlobalConfigFile: firstNonEmpty(*globalConfigFile, *globalConfigFileAlias),
		Mode:             firstNonEmpty(*modeFlag, *modeFlagAlias),
		Slug:             firstNonEmpty(*slugFlag, *slugFlagAlias),
		Output:           *outputFlag,
	}
	if *outputFlagAlias != "" && *outputFlag == outputText {
		flags.Output = *outputFlagAlias
	}

	if flags.Output != outputText && flags.Output != outputJSON {
		return AppFlags{}, fmt.Errorf("unsupported output format %q (want %s or %s)", flags.Output, outputText, outputJSON)
	}
	if flags.Mode == config.ModeHistory && flags.Slug == "" {
		return AppFlags{}, fmt.Errorf("-slug is required in %s mode", config.ModeHistory)
	}
	return flags, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
