package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const shooterSchemaURL = "shooter.schema.json"

// shooterSchema 描述 data/shooter.yaml 的结构
const shooterSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "combat": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "automaticFireRate": {"type": "number", "exclusiveMinimum": 0},
        "shootTimeDuration": {"type": "number", "exclusiveMinimum": 0},
        "traceLength": {"type": "number", "exclusiveMinimum": 0},
        "autoFire": {"type": "boolean"},
        "defaultWeapon": {"type": "string"}
      }
    },
    "crosshair": {
      "type": "object",
      "additionalProperties": {"type": "number", "minimum": 0}
    },
    "aim": {
      "type": "object",
      "additionalProperties": {"type": "number", "minimum": 0}
    },
    "items": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "interpDuration": {"type": "number", "exclusiveMinimum": 0},
        "cameraInterpDistance": {"type": "number"},
        "cameraInterpElevation": {"type": "number"},
        "zCurve": {"type": "string"},
        "scaleCurve": {"type": "string"},
        "sphereRadius": {"type": "number", "minimum": 0}
      }
    },
    "weapons": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "required": ["weaponType", "ammoType", "magazineCapacity"],
        "properties": {
          "name": {"type": "string"},
          "weaponType": {"enum": ["SubmachineGun", "AssaultRifle", "smg", "ar"]},
          "ammoType": {"enum": ["9mm", "AR"]},
          "rarity": {"enum": ["Damaged", "Common", "Uncommon", "Rare", "Legendary"]},
          "ammoCount": {"type": "integer", "minimum": 0},
          "magazineCapacity": {"type": "integer", "minimum": 1},
          "reloadSection": {"type": "string"},
          "clipBone": {"type": "string"},
          "throwWeaponTime": {"type": "number", "exclusiveMinimum": 0},
          "throwImpulse": {"type": "number", "minimum": 0}
        }
      }
    },
    "curves": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "keys": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["time", "value"],
              "properties": {
                "time": {"type": "number"},
                "value": {"type": "number"}
              }
            }
          },
          "easing": {"type": "string"},
          "duration": {"type": "number", "minimum": 0},
          "from": {"type": "number"},
          "to": {"type": "number"},
          "script": {"type": "string"}
        }
      }
    },
    "ammo": {
      "type": "object",
      "properties": {
        "starting": {
          "type": "object",
          "additionalProperties": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(shooterSchemaURL, strings.NewReader(shooterSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(shooterSchemaURL)
	})
	return compiledSchema, schemaErr
}

// validateSchema 校验 YAML 文档结构
//
// YAML 先转成 JSON 再以 UseNumber 解码，使整数字段能被 "integer" 类型正确识别。
func validateSchema(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	if doc == nil {
		return nil // 空文件：全部使用默认值
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert yaml to json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var jsonDoc interface{}
	if err := dec.Decode(&jsonDoc); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	return schema.Validate(jsonDoc)
}
