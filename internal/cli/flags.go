package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// QueryFlags are the view options shared by listing commands.
type QueryFlags struct {
	Search    string `long:"search" description:"Only videos whose title or channel contains this text"`
	Filter    string `long:"filter" description:"Grade filter: all | excellent | good | needs-improvement" default:"all"`
	Sort      string `long:"sort" description:"Sort key: publishedAt | subscribers | views | vsRatio | lvRatio" default:"publishedAt"`
	Direction string `long:"direction" description:"Sort direction: asc | desc" default:"desc"`
	Limit     int    `long:"limit" description:"Maximum rows to print (0 for all)" default:"0"`
}

// ServeCommand runs the HTTP API and scheduler until interrupted.
type ServeCommand struct {
	Port        string `long:"port" description:"Override server port"`
	NoInitial   bool   `long:"no-initial-load" description:"Skip the trending load at startup"`
	WatchConfig bool   `long:"watch-config" description:"Reload region and API key fallback when the config file changes"`

	env *environment
}

// TrendingCommand fetches and ranks trending videos.
type TrendingCommand struct {
	Region string `long:"region" description:"Region code (defaults to youtube.region_code)"`
	QueryFlags

	env *environment
}

// SearchCommand searches videos by keyword and ranks them.
type SearchCommand struct {
	Keyword   string `long:"keyword" short:"k" description:"Search keyword (required)" required:"true"`
	StartDate string `long:"start-date" description:"First published date, YYYY-MM-DD (default 30 days ago)"`
	EndDate   string `long:"end-date" description:"Last published date, YYYY-MM-DD (default today)"`
	QueryFlags

	env *environment
}

// AnalyzeCommand prints a Gemini trend analysis of a fresh collection.
type AnalyzeCommand struct {
	Region  string `long:"region" description:"Region code for the trending list"`
	Keyword string `long:"keyword" short:"k" description:"Analyze a keyword search instead of trending"`

	env *environment
}

// CredentialCommand groups the credential subcommands.
type CredentialCommand struct{}

// CredentialSetCommand stores an API key.
type CredentialSetCommand struct {
	Args struct {
		APIKey string `positional-arg-name:"api-key" description:"YouTube Data API key"`
	} `positional-args:"yes" required:"yes"`

	env *environment
}

// CredentialShowCommand prints the active key masked.
type CredentialShowCommand struct {
	env *environment
}

// CredentialClearCommand removes the stored key.
type CredentialClearCommand struct {
	env *environment
}

// ConfigCommand groups the config subcommands.
type ConfigCommand struct{}

// ConfigSetCommand writes one key of the config file, e.g. youtube.region_code.
// A server started with --watch-config picks the change up.
type ConfigSetCommand struct {
	Args struct {
		Key   string `positional-arg-name:"key" description:"Dotted config key, e.g. youtube.region_code"`
		Value string `positional-arg-name:"value" description:"New value"`
	} `positional-args:"yes" required:"yes"`

	env *environment
}
