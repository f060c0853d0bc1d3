// Package config loads the kickers configuration.
//
// The configuration lives in kickers.toml. A missing file is not an error:
// every key has a default, so the command runs against a local service out
// of the box.
//
// # Configuration File Structure
//
//	log_level = "info"
//
//	[api]
//	url = "https://kickers.example.org"
//	token_file = "~/.config/kickers/token"
//
//	[toast]
//	duration = "5s"
//
//	[offline]
//	version = "2025.06.01"
//	manifest = "dist/manifest.json"
//	origin = "http://localhost:4173"
//	listen = ":8080"
//	api_prefix = "/v1/"
//	cache_prefix = "friday-kickers-"
//
//	[cache]
//	backend = "bolt"
//	bolt_path = "kickers-cache.db"
//
//	[cache.s3]
//	bucket = "kickers-cache"
//	prefix = "offline/"
//	region = "eu-central-1"
//	endpoint = ""
//
// # Environment
//
// KICKERS_API_URL and KICKERS_VERSION override api.url and offline.version.
package config
