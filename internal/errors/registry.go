package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://hydrate.vango.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Runtime closed",
		Detail:   "Work was submitted to a runtime whose loop has already stopped.",
		DocURL:   docBase + "E001",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Task panicked",
		Detail:   "A task running on the runtime loop panicked. The loop recovered and keeps running.",
		DocURL:   docBase + "E002",
	},
	"E008": {
		Category: CategoryRuntime,
		Message:  "Runtime.Do called from the runtime loop",
		Detail:   "Do waits for the loop to run a task. Calling it from a task already on the loop can never complete. Use Dispatch instead.",
		DocURL:   docBase + "E008",
	},
	"E010": {
		Category: CategoryRuntime,
		Message:  "Resource loader failed",
		Detail:   "The loader of a resource returned an error. The error is terminal for the load generation; call Refetch to try again.",
		DocURL:   docBase + "E010",
	},
	"E011": {
		Category: CategoryRuntime,
		Message:  "Suspense wait cancelled",
		Detail:   "A suspense boundary was still pending when the render context was cancelled.",
		DocURL:   docBase + "E011",
	},
	"E012": {
		Category: CategoryRuntime,
		Message:  "Render did not settle",
		Detail:   "Server rendering re-evaluated the tree the maximum number of times and boundaries were still pending. A resource key probably changes on every render.",
		DocURL:   docBase + "E012",
	},

	// ============================================
	// Gateway Errors (E020-E039)
	// ============================================

	"E020": {
		Category: CategoryGateway,
		Message:  "Server function arguments could not be serialized",
		Detail:   "The codec rejected the arguments, for example because a string is not valid UTF-8.",
		DocURL:   docBase + "E020",
	},
	"E021": {
		Category: CategoryGateway,
		Message:  "Server function transport failed",
		Detail:   "The request did not produce a response frame: the network failed, the server answered with a non-success status, or the socket closed.",
		DocURL:   docBase + "E021",
	},
	"E022": {
		Category: CategoryGateway,
		Message:  "Server function response could not be deserialized",
		Detail:   "The response frame or its payload is malformed. This is never reported as a transport failure.",
		DocURL:   docBase + "E022",
	},
	"E023": {
		Category: CategoryGateway,
		Message:  "Server function failed",
		Detail:   "The server function implementation returned an error or panicked.",
		DocURL:   docBase + "E023",
	},
	"E024": {
		Category: CategoryGateway,
		Message:  "Server function not found",
		Detail:   "No server function is registered under the requested name.",
		DocURL:   docBase + "E024",
	},
	"E025": {
		Category: CategoryGateway,
		Message:  "Server function timed out",
		Detail:   "The call did not complete within the configured timeout.",
		DocURL:   docBase + "E025",
	},
	"E026": {
		Category: CategoryGateway,
		Message:  "Server function rate limited",
		Detail:   "Too many calls to this function. The server answered 429.",
		DocURL:   docBase + "E026",
	},

	// ============================================
	// Hydration Errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategoryHydration,
		Message:  "Hydration payload malformed",
		Detail:   "The embedded hydration payload could not be parsed. No resource was seeded.",
		DocURL:   docBase + "E040",
	},
	"E041": {
		Category: CategoryHydration,
		Message:  "Hydration envelope could not be decoded",
		Detail:   "The serialized value for a resource could not be decoded with the resource's codec. The resource is errored and its loader was not called.",
		DocURL:   docBase + "E041",
	},
	"E042": {
		Category: CategoryHydration,
		Message:  "Hydration mismatch: markup differs",
		Detail:   "The first client render does not match the server-rendered markup.",
		DocURL:   docBase + "E042",
	},

	// ============================================
	// Protocol Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryProtocol,
		Message:  "WebSocket closed",
		Detail:   "The gateway socket closed while calls were in flight.",
		DocURL:   docBase + "E060",
	},

	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid hydrate.json",
		Detail:   "The hydrate.json configuration file is malformed.",
		DocURL:   docBase + "E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
		DocURL:   docBase + "E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is outside its allowed set or range.",
		DocURL:   docBase + "E122",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
		DocURL:   docBase + "E140",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
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

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
