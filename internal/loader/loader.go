package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/flowlab/simsweep/internal/model"
)

// sweepSchema is the structural contract for a sweep spec document. Semantic
// rules that JSON schema cannot express live in validateSemantics.
const sweepSchema = `{
  "type": "object",
  "required": ["out_dir", "machine", "hierarchies"],
  "properties": {
    "out_dir": {"type": "string", "minLength": 1},
    "machine": {"type": "string", "minLength": 1},
    "nproc": {"type": "integer", "minimum": 1},
    "runtime": {"type": "string"},
    "worker": {"type": "string"},
    "record_output": {"type": "boolean"},
    "hpc": {
      "type": "object",
      "required": ["cluster", "job_name", "account", "nodes", "nproc"],
      "properties": {
        "cluster": {"type": "string"},
        "job_name": {"type": "string"},
        "account": {"type": "string"},
        "partition": {"type": "string"},
        "time": {"type": "string"},
        "nodes": {"type": "integer", "minimum": 1},
        "nproc": {"type": "integer", "minimum": 1},
        "nproc_per_node": {"type": "integer", "minimum": 1},
        "mem_per_cpu": {"type": "string"},
        "mail_types": {"type": "string"},
        "email": {"type": "string"}
      }
    },
    "hierarchies": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "cases"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "cases": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["name", "problem", "meshes_dir", "mesh_files", "geometry", "scenarios"],
              "properties": {
                "name": {"type": "string", "minLength": 1},
                "problem": {"type": "string", "minLength": 1},
                "meshes_dir": {"type": "string", "minLength": 1},
                "mesh_files": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
                "geometry": {
                  "type": "object",
                  "required": ["chord_ref", "area_ref"],
                  "properties": {
                    "chord_ref": {"type": "number"},
                    "area_ref": {"type": "number"}
                  }
                },
                "aero_options": {"type": "object"},
                "struct_options": {"type": "object"},
                "scenarios": {
                  "type": "array",
                  "minItems": 1,
                  "items": {
                    "type": "object",
                    "required": ["name", "aoa_list", "re", "mach", "temp"],
                    "properties": {
                      "name": {"type": "string", "minLength": 1},
                      "aoa_list": {"type": "array", "minItems": 1, "items": {"type": "number"}},
                      "re": {"type": "number"},
                      "mach": {"type": "number"},
                      "temp": {"type": "number"},
                      "exp_data": {"type": "string"}
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

// LoadSweepSpec loads, schema-validates and semantically checks a sweep spec
// YAML file. All configuration errors surface here, before any dispatch.
func LoadSweepSpec(path string) (*model.SweepSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sweep spec: %w", err)
	}

	// Parse YAML to interface{} first so the schema validator can see it.
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse sweep spec YAML: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(toJSONValue(doc)); err != nil {
		return nil, fmt.Errorf("sweep spec failed schema validation: %w", err)
	}

	var spec model.SweepSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to decode sweep spec: %w", err)
	}

	if err := validateSemantics(&spec); err != nil {
		return nil, err
	}

	return &spec, nil
}

// compileSchema compiles the embedded sweep schema.
func compileSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.CompileString("sweep_schema.json", sweepSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile sweep schema: %w", err)
	}
	return schema, nil
}

// toJSONValue converts a yaml.v3 tree into the JSON-typed tree the schema
// validator expects (string keys, float64/json.Number scalars).
func toJSONValue(doc interface{}) interface{} {
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return doc
	}
	var out interface{}
	if err := json.Unmarshal(jsonData, &out); err != nil {
		return doc
	}
	return out
}

// validateSemantics enforces the rules the schema cannot: recognized kinds,
// unique names at every tree level, and problem-kind prerequisites.
func validateSemantics(spec *model.SweepSpec) error {
	if _, err := model.ParseMachineKind(spec.Machine); err != nil {
		return err
	}

	hierNames := make(map[string]bool)
	for _, h := range spec.Hierarchies {
		if hierNames[h.Name] {
			return fmt.Errorf("duplicate hierarchy name: %s", h.Name)
		}
		hierNames[h.Name] = true

		caseNames := make(map[string]bool)
		for _, c := range h.Cases {
			if caseNames[c.Name] {
				return fmt.Errorf("duplicate case name %s in hierarchy %s", c.Name, h.Name)
			}
			caseNames[c.Name] = true

			kind, err := model.ParseProblemKind(c.Problem)
			if err != nil {
				return fmt.Errorf("case %s: %w", c.Name, err)
			}
			if kind == model.ProblemAerostructural {
				if c.StructOptions == nil {
					return fmt.Errorf("case %s: aerostructural problems require struct_options", c.Name)
				}
				if _, ok := c.StructOptions["mesh_fpath"]; !ok {
					return fmt.Errorf("case %s: struct_options must include mesh_fpath", c.Name)
				}
			}

			scenarioNames := make(map[string]bool)
			for _, s := range c.Scenarios {
				if scenarioNames[s.Name] {
					return fmt.Errorf("duplicate scenario name %s in case %s", s.Name, c.Name)
				}
				scenarioNames[s.Name] = true

				seen := make(map[string]bool)
				for _, aoa := range s.AoAList {
					key := model.ConditionKey(aoa)
					if seen[key] {
						return fmt.Errorf("duplicate angle of attack %s in scenario %s", model.FormatCondition(aoa), s.Name)
					}
					seen[key] = true
				}
			}
		}
	}

	return nil
}
