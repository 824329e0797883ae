package cache

// ScopedKeyer wraps a Keyer with a prefix so that several explorers or
// server instances can share one backend without colliding.
//
// Example usage:
//
//	// One namespace per mounted widget
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "widget:vae-demo:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// AssetKey generates a prefixed key for a dataset asset.
func (k *ScopedKeyer) AssetKey(source, name string) string {
	return k.prefix + k.inner.AssetKey(source, name)
}
