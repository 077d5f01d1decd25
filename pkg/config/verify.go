package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema.
// It reports config sections and fields missing from the schema, which means the schema is stale.
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	var schema struct {
		Defs map[string]struct {
			Properties map[string]json.RawMessage `json:"properties"`
			Required   []string                   `json:"required"`
		} `json:"$defs"`
	}
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}
	root, ok := schema.Defs["Config"]
	if !ok {
		return fmt.Errorf("embedded schema has no Config definition")
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var configMap map[string]map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	sections := make([]string, 0, len(configMap))
	for name := range configMap {
		sections = append(sections, name)
	}
	sort.Strings(sections)
	for _, name := range sections {
		if _, ok := root.Properties[name]; !ok {
			return fmt.Errorf("section %q is not in schema", name)
		}
		def, ok := schema.Defs[defName(name)]
		if !ok {
			return fmt.Errorf("section %q has no schema definition", name)
		}
		for field := range configMap[name] {
			if _, ok := def.Properties[field]; !ok {
				return fmt.Errorf("field %s.%s is not in schema", name, field)
			}
		}
	}

	// basic validation - check required fields match
	if err := validateRequiredFields(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// defName maps a section name to its reflected definition
func defName(section string) string {
	names := map[string]string{
		"server":    "ServerConfig",
		"remote":    "RemoteConfig",
		"generator": "GeneratorConfig",
		"publish":   "PublishConfig",
		"schedule":  "ScheduleConfig",
		"edit":      "EditConfig",
		"journal":   "JournalConfig",
	}
	return names[section]
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if cfg.Server.Timeout == 0 {
		return fmt.Errorf("server.timeout is required")
	}
	if cfg.Remote.URL == "" {
		return fmt.Errorf("remote.url is required")
	}
	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
