package domain

// ResolveConfig fills zero-valued fields of a submitted config bundle with
// their documented defaults and clamps the rest to their declared ranges.
func ResolveConfig(c ConfigBundle) ConfigBundle {
	if c.UseInternalRAG == nil {
		t := true
		c.UseInternalRAG = &t
	}
	if c.EnablePersonalisation == nil {
		t := true
		c.EnablePersonalisation = &t
	}

	if c.KTotal < 0 {
		c.KTotal = 0
	}
	const kCeiling = 100
	if c.KTotal > kCeiling {
		c.KTotal = kCeiling
	}

	if c.PersonalisationAlpha == 0 {
		c.PersonalisationAlpha = 0.25
	}
	if c.PersonalisationAlpha < 0 {
		c.PersonalisationAlpha = 0
	}
	if c.PersonalisationAlpha > 1 {
		c.PersonalisationAlpha = 1
	}

	if c.MaxIterations <= 0 {
		c.MaxIterations = 10
	}
	if c.DeadlineMS <= 0 {
		c.DeadlineMS = 300000
	}
	if c.PIIStrategy == "" {
		c.PIIStrategy = string(RedactionTyped)
	}

	return c
}
