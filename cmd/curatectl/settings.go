package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/curator/internal/config"
	"github.com/kailas-cloud/curator/internal/domain/permission"
	"github.com/kailas-cloud/curator/internal/domain/query"
	"github.com/kailas-cloud/curator/internal/usecase/curation"
)

// settings are the resolved pipeline parameters for one invocation.
type settings struct {
	domain     permission.Domain
	limits     query.Limits
	maxRecords int
}

// resolve builds settings from the config file when given, otherwise from flags.
func (o *globalOptions) resolve() (settings, error) {
	if o.configPath != "" {
		data, err := os.ReadFile(filepath.Clean(o.configPath))
		if err != nil {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
		cfg, err := config.Parse(data)
		if err != nil {
			return settings{}, err
		}
		dom, err := cfg.Curation.Permission.Domain()
		if err != nil {
			return settings{}, err
		}
		return settings{
			domain: dom,
			limits: query.Limits{
				DefaultMaxCount: cfg.Curation.DefaultMaxCount,
				MaxCountCap:     cfg.Curation.MaxCountCap,
			},
			maxRecords: cfg.Curation.MaxRecords,
		}, nil
	}

	var (
		dom permission.Domain
		err error
	)
	if len(o.levelNames) > 0 {
		dom, err = permission.NewNamed(o.levelNames...)
	} else {
		dom, err = permission.NewRange(o.minLevel, o.maxLevel)
	}
	if err != nil {
		return settings{}, fmt.Errorf("permission domain: %w", err)
	}
	return settings{domain: dom, limits: query.DefaultLimits(), maxRecords: curation.DefaultMaxRecords}, nil
}
