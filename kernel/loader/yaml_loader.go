package loader

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/suntrap/buildboard/kernel/model"
	"gopkg.in/yaml.v2"
)

const (
	EnvBackendURL = "BUILDBOARD_BACKEND_URL"
	EnvMode       = "BUILDBOARD_MODE"
	EnvFixtures   = "BUILDBOARD_FIXTURES"
)

// LoadConfig reads a YAML config file over the defaults and applies the
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read config [%s]", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "unable to parse config [%s]", path)
		}
	}

	if v, found := os.LookupEnv(EnvBackendURL); found && v != "" {
		cfg.BackendURL = v
	}
	if v, found := os.LookupEnv(EnvMode); found && v != "" {
		cfg.Mode = model.Mode(v)
	}
	if v, found := os.LookupEnv(EnvFixtures); found && v != "" {
		cfg.FixturesPath = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// LoadFixtures reads an offline data set. Files ending in .json are decoded
// as JSON, everything else as YAML.
func LoadFixtures(path string) (*model.Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read fixtures [%s]", path)
	}

	f := &model.Fixtures{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, f)
	} else {
		err = yaml.Unmarshal(data, f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse fixtures [%s]", path)
	}

	for code, servers := range f.BuildStatus {
		for _, s := range servers {
			if _, err := s.Position(); err != nil {
				logrus.Warnf("fixtures [%s]: region [%s] hostname [%s]: %v", path, code, s.Hostname, err)
			}
		}
	}
	return f, nil
}
