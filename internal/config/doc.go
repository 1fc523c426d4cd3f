// Package config provides configuration structures and utilities for
// govcrawl. It defines the crawl options (seeds, scope, retry and
// politeness settings), the extraction selector rules, and the YAML
// configuration file with per-site overrides.
package config
