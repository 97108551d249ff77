package weights

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"
)

// schemaRelativePath is the weight config schema location relative to the
// repository root.
const schemaRelativePath = "schemas/weight_config.schema.json"

// ResolveSchemaPath attempts to find a schema file by trying multiple common
// path resolutions. It tries paths relative to the current working directory,
// then paths relative to likely repo root locations. Returns the first path
// that exists, or empty string if none found. This is useful when commands
// may run from different working directory contexts (e.g., tests).
func ResolveSchemaPath(relativePath string) string {
	candidates := []string{
		relativePath,
		filepath.Join("..", relativePath),
		filepath.Join("..", "..", relativePath),
	}

	for _, candidate := range candidates {
		if absPath, err := filepath.Abs(candidate); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}

	return ""
}

// configFile is the on-disk shape of a weight configuration file.
type configFile struct {
	Default  string   `json:"default,omitempty"`
	Versions []Config `json:"versions"`
}

// LoadFile registers every version from a JSON weight configuration file.
// The file is validated against the weight config schema first when the
// schema can be located; malformed files fail the load, they never half
// register.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read weight config file %s: %w", path, err)
	}

	if schemaPath := ResolveSchemaPath(schemaRelativePath); schemaPath != "" {
		if err := validateAgainstSchema(schemaPath, data); err != nil {
			return fmt.Errorf("weight config file %s: %w", path, err)
		}
	}

	var file configFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse weight config file %s: %w", path, err)
	}
	if len(file.Versions) == 0 {
		return fmt.Errorf("weight config file %s defines no versions", path)
	}

	// Validate every version before registering any, so a bad entry does
	// not leave the registry partially loaded.
	for i := range file.Versions {
		if err := file.Versions[i].Validate(); err != nil {
			return fmt.Errorf("weight config file %s: %w", path, err)
		}
	}

	for i := range file.Versions {
		if err := r.Register(&file.Versions[i]); err != nil {
			return err
		}
	}

	if file.Default != "" {
		if err := r.SetDefault(file.Default); err != nil {
			return fmt.Errorf("weight config file %s: %w", path, err)
		}
	}

	return nil
}

func validateAgainstSchema(schemaPath string, document []byte) error {
	schemaLoader := gojsonschema.NewReferenceLoader("file://" + schemaPath)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate against schema: %w", err)
	}
	if !result.Valid() {
		var details string
		for _, desc := range result.Errors() {
			details += fmt.Sprintf("\n  - %s", desc)
		}
		return fmt.Errorf("schema validation failed:%s", details)
	}
	return nil
}
