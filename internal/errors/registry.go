package errors

type template struct {
	Category   Category
	Message    string
	Suggestion string
}

var registry = map[string]template{
	// Configuration (K100-K199)
	"K100": {
		Category:   CategoryConfig,
		Message:    "Cannot read configuration file",
		Suggestion: "Check the path passed with --config and its permissions",
	},
	"K101": {
		Category:   CategoryConfig,
		Message:    "Configuration file is invalid",
		Suggestion: "kickers.toml must be valid TOML; see 'kickers serve --help' for the keys",
	},
	"K102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"K103": {
		Category:   CategoryConfig,
		Message:    "Unknown cache backend",
		Suggestion: "Set cache.backend to one of: memory, bolt, s3",
	},

	// Remote service (K200-K299)
	"K200": {
		Category:   CategoryRemote,
		Message:    "Club service request failed",
		Suggestion: "Check api.url and that the service is reachable",
	},
	"K201": {
		Category:   CategoryRemote,
		Message:    "Not logged in",
		Suggestion: "Run 'kickers login' first",
	},

	// Offline cache (K300-K399)
	"K300": {
		Category: CategoryCache,
		Message:  "Cannot open cache storage",
	},
	"K301": {
		Category:   CategoryCache,
		Message:    "Cache install failed",
		Suggestion: "Every manifest entry must be reachable on the origin",
	},
	"K302": {
		Category:   CategoryCache,
		Message:    "Cannot read precache manifest",
		Suggestion: "The manifest is a JSON array of paths or an object of source to path",
	},

	// Command usage (K400-K499)
	"K400": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
	},
	"K401": {
		Category: CategoryCLI,
		Message:  "User not found",
	},
}
