package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reconcile Errors (E101-E199)
	// ============================================

	"E101": {
		Category:   CategoryReconcile,
		Message:    "Invalid hook context",
		Suggestion: "Call hooks only while the component renders, unconditionally, and in the same order on every render.",
		DocURL:     "https://loom.dev/docs/errors/E101",
	},
	"E102": {
		Category:   CategoryHost,
		Message:    "Host operation failed",
		Suggestion: "The host tree may be inconsistent; the commit was abandoned and the previous tree remains current.",
		DocURL:     "https://loom.dev/docs/errors/E102",
	},
	"E103": {
		Category:   CategoryReconcile,
		Message:    "No container to render into",
		Suggestion: "Pass the host handle of an existing container to Render.",
		DocURL:     "https://loom.dev/docs/errors/E103",
	},
	"E104": {
		Category: CategoryReconcile,
		Message:  "Component render panicked",
		DocURL:   "https://loom.dev/docs/errors/E104",
	},

	// ============================================
	// Config Errors (E201-E299)
	// ============================================

	"E201": {
		Category:   CategoryConfig,
		Message:    "Config file not found",
		Suggestion: "Create loom.json, loom.yaml or loom.toml, or pass --config.",
		DocURL:     "https://loom.dev/docs/errors/E201",
	},
	"E202": {
		Category: CategoryConfig,
		Message:  "Config file could not be parsed",
		DocURL:   "https://loom.dev/docs/errors/E202",
	},
	"E203": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		DocURL:   "https://loom.dev/docs/errors/E203",
	},
	"E204": {
		Category:   CategoryConfig,
		Message:    "Unsupported config format",
		Suggestion: "Use a .json, .yaml, .yml or .toml file.",
		DocURL:     "https://loom.dev/docs/errors/E204",
	},

	// ============================================
	// Protocol Errors (E301-E399)
	// ============================================

	"E301": {
		Category: CategoryProtocol,
		Message:  "Malformed frame",
		DocURL:   "https://loom.dev/docs/errors/E301",
	},
	"E302": {
		Category: CategoryProtocol,
		Message:  "Malformed event",
		DocURL:   "https://loom.dev/docs/errors/E302",
	},
	"E303": {
		Category: CategoryProtocol,
		Message:  "No listener for event",
		DocURL:   "https://loom.dev/docs/errors/E303",
	},

	// ============================================
	// Snapshot Errors (E401-E499)
	// ============================================

	"E401": {
		Category: CategorySnapshot,
		Message:  "Snapshot not found",
		DocURL:   "https://loom.dev/docs/errors/E401",
	},
	"E402": {
		Category: CategorySnapshot,
		Message:  "Snapshot store failed",
		DocURL:   "https://loom.dev/docs/errors/E402",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces a custom error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
