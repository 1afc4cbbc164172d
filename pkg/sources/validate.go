package sources

import (
	"fmt"
)

// Validate checks the configuration for errors and applies defaults.
func (c *SourcesConfig) Validate() error {
	if len(c.ClimateSources) == 0 {
		return fmt.Errorf("no climate sources specified in configuration")
	}

	seenIDs := make(map[int]bool)
	seenNames := make(map[string]bool)
	for i := range c.ClimateSources {
		src := &c.ClimateSources[i]
		warnings, err := src.Validate()
		if err != nil {
			return fmt.Errorf("climate source %d: %w", i+1, err)
		}
		if seenIDs[src.ID] {
			return fmt.Errorf("duplicate climate source id: %d", src.ID)
		}
		if seenNames[src.Name] {
			return fmt.Errorf("duplicate climate source name: %s", src.Name)
		}
		seenIDs[src.ID] = true
		seenNames[src.Name] = true
		c.Warnings = append(c.Warnings, warnings...)
	}

	for i := range c.Layers {
		if err := c.Layers[i].Validate(); err != nil {
			return fmt.Errorf("layer %d: %w", i+1, err)
		}
	}

	return nil
}

// Validate checks a single climate source for structural validity.
// File system validation (directory existence) is deferred to runtime
// (I/O layer). Returns non-fatal warnings and a fatal error.
func (s *ClimateSourceConfig) Validate() ([]ValidationWarning, error) {
	var warnings []ValidationWarning

	if s.ID <= 0 {
		return nil, fmt.Errorf("id is required and must be positive")
	}
	if s.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	switch s.Kind {
	case KindRemote:
		if s.ServiceURL == "" {
			return nil, fmt.Errorf("service_url is required for remote sources")
		}
		if s.Collection == "" {
			return nil, fmt.Errorf("collection is required for remote sources")
		}
	case KindLocal:
		if s.Parent == "" {
			return nil, fmt.Errorf("parent is required for local sources")
		}
	default:
		return nil, fmt.Errorf("invalid kind %q: must be 'remote' or 'local'", s.Kind)
	}

	switch s.Temporal {
	case "monthly", "daily", "static":
	default:
		return nil, fmt.Errorf(
			"invalid temporal %q: must be 'monthly', 'daily' or 'static'",
			s.Temporal,
		)
	}

	if s.Grid.Nx <= 0 || s.Grid.Ny <= 0 {
		return nil, fmt.Errorf("grid dimensions nx/ny must be positive")
	}
	if s.Grid.Dx <= 0 || s.Grid.Dy <= 0 {
		return nil, fmt.Errorf("grid cell size dx/dy must be positive")
	}

	if len(s.Variables) == 0 {
		return nil, fmt.Errorf("at least one variable is required")
	}
	seenVars := make(map[string]bool)
	for _, v := range s.Variables {
		if v.Name == "" {
			return nil, fmt.Errorf("variable name cannot be empty")
		}
		if seenVars[v.Name] {
			return nil, fmt.Errorf("duplicate variable: %s", v.Name)
		}
		seenVars[v.Name] = true
		if v.Scale == 0 {
			warnings = append(warnings, ValidationWarning{
				Source:     s.Name,
				Field:      "variables." + v.Name + ".scale",
				Message:    "scale is zero, treating it as 1",
				Suggestion: "Set 'scale: 1.0' explicitly to silence this warning",
			})
		}
	}

	if s.Temporal != "static" {
		if s.YearStart == 0 || s.YearEnd == 0 {
			return nil, fmt.Errorf("year_start and year_end are required")
		}
		if s.YearEnd < s.YearStart {
			return nil, fmt.Errorf(
				"year_end %d precedes year_start %d", s.YearEnd, s.YearStart)
		}
	}

	if s.Grid.SRID == 0 {
		warnings = append(warnings, ValidationWarning{
			Source:     s.Name,
			Field:      "grid.srid",
			Message:    "grid has no SRID; survey layers are assumed to match",
			Suggestion: "Set 'grid.srid' to the EPSG code of the grid",
		})
	}

	return warnings, nil
}

// Validate checks a single survey layer definition.
func (l *LayerConfig) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("name is required")
	}
	if l.Path == "" {
		return fmt.Errorf("path is required")
	}
	if l.IDField == "" {
		return fmt.Errorf("id_field is required")
	}
	return nil
}

// FilterSources returns the climate sources matching the given names, or
// all sources when names is empty. Unknown names yield an error so typos
// do not silently skip work.
func (c *SourcesConfig) FilterSources(names []string) ([]ClimateSourceConfig, error) {
	if len(names) == 0 {
		return c.ClimateSources, nil
	}
	byName := make(map[string]ClimateSourceConfig, len(c.ClimateSources))
	for _, s := range c.ClimateSources {
		byName[s.Name] = s
	}
	var res []ClimateSourceConfig
	for _, n := range names {
		s, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown climate source: %s", n)
		}
		res = append(res, s)
	}
	return res, nil
}

// FilterLayers returns the layers matching the given names, or all layers
// when names is empty.
func (c *SourcesConfig) FilterLayers(names []string) ([]LayerConfig, error) {
	if len(names) == 0 {
		return c.Layers, nil
	}
	byName := make(map[string]LayerConfig, len(c.Layers))
	for _, l := range c.Layers {
		byName[l.Name] = l
	}
	var res []LayerConfig
	for _, n := range names {
		l, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown layer: %s", n)
		}
		res = append(res, l)
	}
	return res, nil
}
