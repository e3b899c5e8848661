package policy

// ResolveMaxLevel returns the max_level_allowed of cfg, or defaultValue when
// cfg is nil or does not set it.
func ResolveMaxLevel(cfg *PolicyConfig, defaultValue int) int {
	if cfg == nil || cfg.MaxLevelAllowed == nil {
		return defaultValue
	}
	return *cfg.MaxLevelAllowed
}

// ResolveDisableOpinionated reports whether opinionated issues should be
// suppressed: either the caller asked for it or cfg does.
func ResolveDisableOpinionated(cfg *PolicyConfig, requested bool) bool {
	if requested {
		return true
	}
	return cfg != nil && cfg.DisableOpinionated
}
