package config

// SiteConfig holds overrides for a single host. This allows adjusting
// crawl behavior per site without separate invocations.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers for requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// ScopePrefix overrides the global scope rule for crawls seeded
	// at this site.
	ScopePrefix string `yaml:"scopePrefix,omitempty"`

	// CrawlDelaySeconds overrides the global politeness delay.
	// Zero means use the global value.
	CrawlDelaySeconds float64 `yaml:"crawlDelaySeconds,omitempty"`

	// Rules overrides the global extraction selector rules. Fields
	// left empty fall back to the global rules.
	Rules *ExtractionRules `yaml:"rules,omitempty"`

	// UnavailableTexts overrides the body markers treated as fetch
	// failures for this site.
	UnavailableTexts []string `yaml:"unavailableTexts,omitempty"`
}

// File represents the structure of the .govcrawl configuration file.
type File struct {
	// Sites maps hostnames to their overrides.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults are applied to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a host, merging the
// site-specific entry over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	site, ok := cf.Sites[host]
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.ScopePrefix != "" {
		result.ScopePrefix = site.ScopePrefix
	}
	if site.CrawlDelaySeconds != 0 {
		result.CrawlDelaySeconds = site.CrawlDelaySeconds
	}
	if len(site.Headers) > 0 {
		// The defaults map must not absorb one site's headers; copy
		// before merging so later lookups for other hosts stay clean.
		merged := make(map[string]string, len(result.Headers)+len(site.Headers))
		for k, v := range result.Headers {
			merged[k] = v
		}
		for k, v := range site.Headers {
			merged[k] = v
		}
		result.Headers = merged
	}
	if site.Rules != nil {
		result.Rules = site.Rules
	}
	if len(site.UnavailableTexts) > 0 {
		result.UnavailableTexts = site.UnavailableTexts
	}

	return result
}

// MergeRules layers a site's partial rule overrides on top of base
// rules. Empty fields in the override keep the base value.
func MergeRules(base ExtractionRules, override *ExtractionRules) ExtractionRules {
	if override == nil {
		return base
	}
	if override.TitleSelector != "" {
		base.TitleSelector = override.TitleSelector
	}
	if len(override.ContentSelectors) > 0 {
		base.ContentSelectors = override.ContentSelectors
	}
	if len(override.MetadataSelectors) > 0 {
		base.MetadataSelectors = override.MetadataSelectors
	}
	return base
}
