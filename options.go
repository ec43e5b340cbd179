package gboxfile

// Option configures Read. The zero value of every Option-affected setting is
// the lenient/best-effort behavior used by default for track attributes.
type Option func(*config)

type config struct {
	strictTrackAttrs bool
}

// WithStrictTrackAttrs makes an unknown track-attribute tag fatal instead of
// a recorded warning. Most on-device projects carry attribute tags this
// library does not yet know about; leave this off unless you need to catch
// regressions in the attribute tag table itself.
func WithStrictTrackAttrs(strict bool) Option {
	return func(c *config) {
		c.strictTrackAttrs = strict
	}
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
