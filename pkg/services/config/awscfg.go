package config

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Registry exposes the profiles declared in an AWS shared config file.
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetRegion(ctx context.Context, profile string) (string, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		// ~/.aws/config names sections "profile <name>", except "default".
		name := strings.TrimPrefix(section.Name(), "profile ")
		profiles = append(profiles, name)
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetRegion(_ context.Context, profile string) (string, error) {
	name := profile
	if name != "default" {
		name = "profile " + profile
	}
	section, err := cr.cfg.GetSection(name)
	if err != nil {
		section, err = cr.cfg.GetSection(profile)
		if err != nil {
			return "", fmt.Errorf("profile %s not found", profile)
		}
	}
	return section.Key("region").String(), nil
}
