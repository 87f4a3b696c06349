package main

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/aurafriday/mcplink-update/internal/model"
)

//go:embed configs/update/mcplink.json
var embeddedUpdateTargetJSON []byte

//go:embed schemas/update-target.schema.json
var updateTargetSchemaJSON []byte

const updateTargetSchemaName = "update-target.schema.json"

var (
	updateTargetOnce sync.Once
	updateTarget     *model.UpdateTarget
	updateTargetErr  error
)

// loadEmbeddedUpdateTarget parses and validates the compiled-in update
// target. The binary should refuse to run update operations against a
// half-specified target, so validation failures are hard errors.
func loadEmbeddedUpdateTarget() (*model.UpdateTarget, error) {
	updateTargetOnce.Do(func() {
		if len(embeddedUpdateTargetJSON) == 0 {
			updateTargetErr = errors.New("embedded update target config is empty")
			return
		}
		if err := validateUpdateTarget(embeddedUpdateTargetJSON); err != nil {
			updateTargetErr = err
			return
		}
		var cfg model.UpdateTarget
		if err := json.Unmarshal(embeddedUpdateTargetJSON, &cfg); err != nil {
			updateTargetErr = fmt.Errorf("parse embedded update target config: %w", err)
			return
		}
		if err := checkEndpointTemplates(&cfg); err != nil {
			updateTargetErr = err
			return
		}
		updateTarget = &cfg
	})
	return updateTarget, updateTargetErr
}

// validateUpdateTarget checks a raw config document against the embedded
// JSON schema.
func validateUpdateTarget(data []byte) error {
	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader(updateTargetSchemaJSON))
	if err != nil {
		return fmt.Errorf("parse update target schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(updateTargetSchemaName, schemaDoc); err != nil {
		return fmt.Errorf("register update target schema: %w", err)
	}
	schema, err := compiler.Compile(updateTargetSchemaName)
	if err != nil {
		return fmt.Errorf("compile update target schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse update target config: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid update target config: %w", err)
	}
	return nil
}

// checkEndpointTemplates enforces what the schema cannot: both URL
// templates must carry the version and platform placeholders the fetcher
// substitutes.
func checkEndpointTemplates(cfg *model.UpdateTarget) error {
	var problems []string
	for name, tpl := range map[string]string{
		"endpoints.primaryUrlTemplate": cfg.Endpoints.PrimaryURLTemplate,
		"endpoints.backupUrlTemplate":  cfg.Endpoints.BackupURLTemplate,
	} {
		for _, placeholder := range []string{"{version}", "{platform}"} {
			if !strings.Contains(tpl, placeholder) {
				problems = append(problems, fmt.Sprintf("%s: missing %s placeholder", name, placeholder))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid update target config:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
