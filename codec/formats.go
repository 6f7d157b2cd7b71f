package codec

import (
	"encoding/json"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// JSON uses encoding/json. CURRENT pointers are always written with it so
// any reader can locate a document.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSON) Name() string                       { return "json" }

// GoJSON uses github.com/goccy/go-json and is the default for state documents.
type GoJSON struct{}

func (GoJSON) Marshal(v any) ([]byte, error)      { return gojson.Marshal(v) }
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }
func (GoJSON) Name() string                       { return "go-json" }

// YAML is used for hand-written mapping and state files.
type YAML struct{}

func (YAML) Marshal(v any) ([]byte, error)      { return yaml.Marshal(v) }
func (YAML) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }
func (YAML) Name() string                       { return "yaml" }
