package bootstrap

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/kbukum/lambdacontainer/config"
	"github.com/kbukum/lambdacontainer/di"
	apperrors "github.com/kbukum/lambdacontainer/errors"
	"github.com/kbukum/lambdacontainer/logger"
)

var registryType = reflect.TypeOf((*di.Registry)(nil)).Elem()

// RegistryType returns the type of registry T for Catalog.AddType.
func RegistryType[T di.Registry]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

type source struct {
	name     string
	typ      reflect.Type
	instance di.Registry
}

// Catalog lists the registries an application boots with. Entries are
// either instances or types; types are constructed at boot from the
// bootstrap container. Each registry type is kept once, first entry wins.
type Catalog struct {
	sources []source
	seen    map[reflect.Type]bool
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{seen: make(map[reflect.Type]bool)}
}

// Add appends registry instances.
func (c *Catalog) Add(registries ...di.Registry) *Catalog {
	for _, reg := range registries {
		if reg == nil {
			continue
		}
		c.add(source{name: di.RegistryName(reg), typ: reflect.TypeOf(reg), instance: reg})
	}
	return c
}

// AddType appends registry types to be constructed at boot.
func (c *Catalog) AddType(types ...reflect.Type) *Catalog {
	for _, t := range types {
		if t == nil {
			continue
		}
		c.add(source{name: t.String(), typ: t})
	}
	return c
}

func (c *Catalog) add(s source) {
	if c.seen[s.typ] {
		return
	}
	c.seen[s.typ] = true
	c.sources = append(c.sources, s)
}

// Len returns the number of distinct registries.
func (c *Catalog) Len() int { return len(c.sources) }

// SkippedRegistry is a registry left out of boot.
type SkippedRegistry struct {
	Name string `json:"name"`
	Err  error  `json:"-"`
}

// Report describes one boot.
type Report struct {
	BootID        string            `json:"boot_id"`
	Recorded      []string          `json:"recorded"`
	Disabled      []string          `json:"disabled,omitempty"`
	Skipped       []SkippedRegistry `json:"skipped,omitempty"`
	Registrations int               `json:"registrations"`
	Duration      time.Duration     `json:"duration"`
}

// Discover turns the catalog into registry instances. Registries disabled
// in cfg are left out. Types that cannot be constructed from boot are
// skipped with a REGISTRY_SKIPPED error in the report.
func (c *Catalog) Discover(ctx context.Context, boot *di.Container, cfg config.ContainerConfig, log *logger.Logger) ([]di.Registry, *Report) {
	report := &Report{}
	registries := make([]di.Registry, 0, len(c.sources))

	for _, s := range c.sources {
		if cfg.IsDisabled(s.name) {
			report.Disabled = append(report.Disabled, s.name)
			log.Info("registry disabled", logger.Fields(logger.FieldRegistry, s.name))
			continue
		}
		reg := s.instance
		if reg == nil {
			var err error
			reg, err = construct(ctx, boot, s.typ)
			if err != nil {
				skipped := apperrors.RegistrySkipped(s.name, err)
				report.Skipped = append(report.Skipped, SkippedRegistry{Name: s.name, Err: skipped})
				log.Warn("registry skipped", logger.MergeWithError(logger.Fields(logger.FieldRegistry, s.name), err))
				continue
			}
		}
		registries = append(registries, reg)
		report.Recorded = append(report.Recorded, s.name)
	}
	return registries, report
}

func construct(ctx context.Context, boot *di.Container, t reflect.Type) (di.Registry, error) {
	if !t.Implements(registryType) {
		return nil, apperrors.InvalidRegistration(t.String(), "type does not implement di.Registry")
	}
	v, err := boot.Construct(ctx, t)
	if err != nil {
		return nil, err
	}
	reg, ok := v.(di.Registry)
	if !ok {
		return nil, apperrors.InvalidRegistration(t.String(), fmt.Sprintf("constructed %T, which is not a di.Registry", v))
	}
	return reg, nil
}
