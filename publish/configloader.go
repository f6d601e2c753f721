package publish

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed publishconfig-schema.json
var publishConfigSchema []byte

// LoadPublishConfig reads a publish configuration from a .toml, .yaml, .yml or .json file.
// The document is checked against the publish configuration schema before it is decoded.
// Missing fields are not reported here, the manifest assembler names the first one.
func LoadPublishConfig(path string) (*PublishConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed reading the publish configuration")
	}
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	config, err := ParsePublishConfig(content, format)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid publish configuration '%s'", path)
	}
	return config, nil
}

// ParsePublishConfig decodes content written in format, one of toml, yaml, yml or json.
func ParsePublishConfig(content []byte, format string) (*PublishConfig, error) {
	var document map[string]interface{}
	var unmarshal func([]byte, interface{}) error
	switch format {
	case "toml":
		unmarshal = toml.Unmarshal
	case "yaml", "yml":
		unmarshal = yaml.Unmarshal
	case "json":
		unmarshal = json.Unmarshal
	default:
		return nil, fmt.Errorf("unsupported publish configuration format '%s'", format)
	}
	if err := unmarshal(content, &document); err != nil {
		return nil, err
	}
	if err := validateDocument(document); err != nil {
		return nil, err
	}
	config := &PublishConfig{}
	if err := unmarshal(content, config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateDocument(document map[string]interface{}) error {
	if document == nil {
		document = map[string]interface{}{}
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(publishConfigSchema), gojsonschema.NewGoLoader(document))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, resultErr := range result.Errors() {
		details = append(details, resultErr.String())
	}
	return errors.New("schema validation failed: " + strings.Join(details, "; "))
}
