// Package config loads rowfinder's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/rowfinder/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - Config file: ~/.config/rowfinder/config.toml
//   - Backend API: http://127.0.0.1:8000
//   - Page size: 20 results (capped at 500)
//   - Request timeout: 30s, upload timeout: 10m
//   - Suggestion debounce: 300ms
//   - Upload progress poll interval: 500ms
//   - Log file: ~/.local/state/rowfinder/rowfinder.log
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:8000"
//	page_size = 20
//	request_timeout = "30s"
//	upload_timeout = "10m"
//	suggest_debounce = "300ms"
//	progress_interval = "500ms"
//	log_file = "~/.local/state/rowfinder/rowfinder.log"
//
// Durations use time.ParseDuration syntax. Every field is optional and tilde
// expansion is applied to log_file.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML syntax errors and unparseable durations. A missing
// config file is not an error.
package config
