// Package config loads hydrate.json.
//
// Every field is optional; missing values take defaults and the result is
// validated on load. Durations are Go duration strings.
//
//	{
//	  "name": "demo",
//	  "server": {"addr": ":3000", "renderTimeout": "5s", "stream": true},
//	  "gateway": {"prefix": "/_fn", "codec": "gojson", "timeout": "2s",
//	              "rateLimit": 20, "websocket": true},
//	  "hydration": {"mode": "store", "store": "redis", "ttl": "2m",
//	                "redis": {"addr": "localhost:6379"}},
//	  "log": {"level": "debug", "format": "json"},
//	  "metrics": {"enabled": true},
//	  "tracing": {"enabled": true}
//	}
//
// Usage:
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger := cfg.Log.NewLogger(os.Stderr)
package config
