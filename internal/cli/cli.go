package cli

import (
	"fmt"
	"io"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Serve      *ServeCommand
	Trending   *TrendingCommand
	Search     *SearchCommand
	Analyze    *AnalyzeCommand
	Credential *CredentialCommand
	Config     *ConfigCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string, out io.Writer) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "video-trend-ranker"
	parser.LongDescription = "Fetch YouTube videos, grade them by views per subscriber and rank them."

	env := &environment{globals: &globals, version: version, out: out}
	cmds := &commands{
		Serve:      &ServeCommand{env: env},
		Trending:   &TrendingCommand{env: env},
		Search:     &SearchCommand{env: env},
		Analyze:    &AnalyzeCommand{env: env},
		Credential: &CredentialCommand{},
		Config:     &ConfigCommand{},
	}

	parser.AddCommand("serve", "Run the HTTP API and scheduler", "Run the HTTP API, the scheduled trending refresh and an initial trending load.", cmds.Serve)
	parser.AddCommand("trending", "Rank trending videos", "Fetch the most popular videos of a region and print them ranked.", cmds.Trending)
	parser.AddCommand("search", "Rank videos matching a keyword", "Search videos by keyword within a date range and print them ranked.", cmds.Search)
	parser.AddCommand("analyze", "Summarize trends with Gemini", "Fetch trending videos (or a keyword search) and print an AI trend analysis.", cmds.Analyze)

	credential, _ := parser.AddCommand("credential", "Manage the stored YouTube API key", "Set, show or clear the stored YouTube API key.", cmds.Credential)
	credential.AddCommand("set", "Store an API key", "Store a YouTube API key. Surrounding whitespace is trimmed.", &CredentialSetCommand{env: env})
	credential.AddCommand("show", "Show the API key masked", "Show the active YouTube API key with all but the last four characters hidden.", &CredentialShowCommand{env: env})
	credential.AddCommand("clear", "Remove the stored API key", "Remove the stored YouTube API key.", &CredentialClearCommand{env: env})

	configCmd, _ := parser.AddCommand("config", "Edit the config file", "Change settings in the YAML config file.", cmds.Config)
	configCmd.AddCommand("set", "Set a config key", "Set one dotted config key. Values from YOUTUBE_API_KEY or GEMINI_API_KEY are never written to the file.", &ConfigSetCommand{env: env})

	return parser, &globals, cmds
}

// Run is the main entry point for the CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// --version is valid without a subcommand
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("video-trend-ranker %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version, os.Stdout)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
