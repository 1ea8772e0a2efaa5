package cache

// ScopedKeyer prefixes every key of an inner Keyer. The CLI scopes keys by
// release so that binaries with different noise code never share fields.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer uses the
// default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// FieldKey returns the prefixed field key.
func (k *ScopedKeyer) FieldKey(opts FieldKeyOpts) string {
	return k.prefix + k.inner.FieldKey(opts)
}
