package sources

import (
	"github.com/ecoclim/pixlink/pkg/config"
)

// EffectiveBatchSize resolves the pixel batch size for a source: the
// source's own batch_size when set, otherwise the configured default.
func (s *ClimateSourceConfig) EffectiveBatchSize(cfg *config.Config) int {
	if s.BatchSize > 0 {
		return s.BatchSize
	}
	return cfg.Extract.BatchSize
}

// EffectivePackMonths resolves whether months of a year are packed into
// one request for this source. Only meaningful for remote monthly
// sources.
func (s *ClimateSourceConfig) EffectivePackMonths(cfg *config.Config) bool {
	if s.PackMonths != nil {
		return *s.PackMonths
	}
	return cfg.Extract.PackMonths
}

// EffectiveYears resolves the inclusive extraction year range, honoring
// per-run overrides from CLI flags.
func (s *ClimateSourceConfig) EffectiveYears(cfg *config.Config) (int, int) {
	start, end := s.YearStart, s.YearEnd
	if cfg.Run.YearStart > 0 {
		start = cfg.Run.YearStart
	}
	if cfg.Run.YearEnd > 0 {
		end = cfg.Run.YearEnd
	}
	return start, end
}

// VariableNames returns the names of all configured variables in order.
func (s *ClimateSourceConfig) VariableNames() []string {
	res := make([]string, len(s.Variables))
	for i, v := range s.Variables {
		res[i] = v.Name
	}
	return res
}

// Variable returns the configuration of a named variable.
func (s *ClimateSourceConfig) Variable(name string) (VariableConfig, bool) {
	for _, v := range s.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return VariableConfig{}, false
}
