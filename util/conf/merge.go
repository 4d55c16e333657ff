package conf

// MergeDefaults combines the defaults of a config section, prefixing each
// key with the section name ns.
func MergeDefaults(ns string, sections ...DefaultConfig) DefaultConfig {
	size := 0
	for _, s := range sections {
		size += len(s)
	}

	merged := make(DefaultConfig, size)
	for _, s := range sections {
		for key, val := range s {
			merged[ns+"."+key] = val
		}
	}

	return merged
}

// Merge combines flat defaults. Later values win on duplicate keys.
func Merge(configs ...DefaultConfig) DefaultConfig {
	merged := DefaultConfig{}
	for _, c := range configs {
		for key, val := range c {
			merged[key] = val
		}
	}

	return merged
}
