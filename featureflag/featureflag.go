package featureflag

// FeatureFlag is the set of build features turned on or off.
type FeatureFlag map[Flag]struct{}

// New returns the feature flags holding flags.
func New(flags []string) FeatureFlag {
	featureFlag := make(FeatureFlag)
	for _, f := range flags {
		featureFlag[Flag(f)] = struct{}{}
	}
	return featureFlag
}

// IsSet reports whether flag is set.
func (f FeatureFlag) IsSet(flag Flag) bool {
	_, ok := f[flag]
	return ok
}

// IfSet runs do when flag is set.
func (f FeatureFlag) IfSet(flag Flag, do func()) {
	if !f.IsSet(flag) {
		return
	}
	do()
}

// IfNotSet runs do when flag is not set. The error of do is returned.
func (f FeatureFlag) IfNotSet(flag Flag, do func() error) error {
	if f.IsSet(flag) {
		return nil
	}
	return do()
}
