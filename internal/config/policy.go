package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AccessPolicy is the externally managed authorization rule set.
//
//	admin:
//	  email_suffixes: ["@horoscope.app"]
//	  user_ids: ["5f0c..."]
//	roles:
//	  astrologer: ["8a1e...", "c9d2..."]
type AccessPolicy struct {
	Admin struct {
		EmailSuffixes []string `yaml:"email_suffixes"`
		UserIDs       []string `yaml:"user_ids"`
	} `yaml:"admin"`
	Roles map[string][]string `yaml:"roles"`
}

// LoadAccessPolicy reads an access policy from a YAML file. An empty path
// yields a policy whose only admin rule is the fallback email suffix.
func LoadAccessPolicy(path string, fallbackSuffix string) (*AccessPolicy, error) {
	p := &AccessPolicy{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read access policy: %w", err)
		}
		if err := yaml.Unmarshal(b, p); err != nil {
			return nil, fmt.Errorf("parse access policy: %w", err)
		}
	}
	if len(p.Admin.EmailSuffixes) == 0 && strings.TrimSpace(fallbackSuffix) != "" {
		p.Admin.EmailSuffixes = []string{strings.TrimSpace(fallbackSuffix)}
	}
	return p, nil
}
