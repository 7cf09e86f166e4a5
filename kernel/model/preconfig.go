package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Preconfig is a configuration template destined for a depot.
type Preconfig struct {
	ID        string    `json:"id" yaml:"id"`
	Depot     int       `json:"depot" yaml:"depot"`
	Config    ConfigMap `json:"config" yaml:"config"`
	CreatedAt string    `json:"created_at" yaml:"created_at"`
}

// PushedPreconfig is one entry of the push history.
type PushedPreconfig struct {
	ID       string    `json:"id" yaml:"id"`
	Depot    int       `json:"depot" yaml:"depot"`
	Config   ConfigMap `json:"config" yaml:"config"`
	PushedAt string    `json:"pushed_at" yaml:"pushed_at"`
}

type ConfigEntry struct {
	Key   string
	Value interface{}
}

// ConfigMap is an opaque, ordered set of scalar settings. Only the code that
// formats a push looks at individual keys.
type ConfigMap []ConfigEntry

func (c ConfigMap) Get(key string) (interface{}, bool) {
	for _, e := range c {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func (c ConfigMap) Keys() []string {
	keys := make([]string, len(c))
	for i, e := range c {
		keys[i] = e.Key
	}
	return keys
}

func (c ConfigMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "config key [%s]", e.Key)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *ConfigMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.Errorf("config must be an object, got %v", tok)
	}

	var out ConfigMap
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return errors.Errorf("unexpected config key %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		if _, isDelim := valTok.(json.Delim); isDelim {
			return errors.Errorf("config key [%s] is not a scalar", key)
		}
		if n, isNum := valTok.(json.Number); isNum {
			if i, err := n.Int64(); err == nil {
				valTok = i
			} else if f, err := n.Float64(); err == nil {
				valTok = f
			}
		}
		out = append(out, ConfigEntry{Key: key, Value: valTok})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

func (c ConfigMap) MarshalYAML() (interface{}, error) {
	ms := make(yaml.MapSlice, len(c))
	for i, e := range c {
		ms[i] = yaml.MapItem{Key: e.Key, Value: e.Value}
	}
	return ms, nil
}

func (c *ConfigMap) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var ms yaml.MapSlice
	if err := unmarshal(&ms); err != nil {
		return err
	}
	out := make(ConfigMap, 0, len(ms))
	for _, item := range ms {
		key := fmt.Sprint(item.Key)
		switch item.Value.(type) {
		case yaml.MapSlice, []interface{}, map[interface{}]interface{}:
			return errors.Errorf("config key [%s] is not a scalar", key)
		}
		out = append(out, ConfigEntry{Key: key, Value: item.Value})
	}
	*c = out
	return nil
}
