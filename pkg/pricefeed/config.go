package pricefeed

// cfg holds every Service knob. All fields have defaults that
// reproduce spec.md's behavior exactly; none of them change the
// semantics fixed by spec.md §4–§8, only observability and defensive
// limits around it.
type cfg struct {
	logger            Logger
	maxStagedPerBatch int
	idGen             IDGenerator
	auditHashing      bool
}

func defaultCfg() cfg {
	return cfg{
		logger:            NewBasicLogger(LogLevelWarn),
		maxStagedPerBatch: 0, // unlimited, matches spec.md (no batch-size restriction)
		idGen:             defaultIDGenerator,
		auditHashing:      true,
	}
}

// Opt configures a Service at construction time, following the
// teacher's functional-options idiom (kgo.Opt).
type Opt func(*cfg)

// WithLogger overrides the default BasicLogger.
func WithLogger(l Logger) Opt {
	return func(c *cfg) { c.logger = l }
}

// WithMaxStagedPerBatch caps the number of distinct instruments a
// single batch may stage before UploadPrice starts failing with
// IllegalState (ErrBatchTooLarge). 0 means unlimited.
func WithMaxStagedPerBatch(n int) Opt {
	return func(c *cfg) { c.maxStagedPerBatch = n }
}

// WithIDGenerator overrides batch-id generation, primarily for
// deterministic tests.
func WithIDGenerator(gen IDGenerator) Opt {
	return func(c *cfg) { c.idGen = gen }
}

// WithAuditHashing toggles the commit audit hash logged on a
// successful CompleteBatch. It is purely observational.
func WithAuditHashing(enabled bool) Opt {
	return func(c *cfg) { c.auditHashing = enabled }
}
