package answers

// SignalKind names a variant-scoped outcome recorded by an icon step.
type SignalKind string

const (
	SignalIconFailed        SignalKind = "icon_failed"
	SignalIconCopied        SignalKind = "icon_copied"
	SignalAdaptiveGenerated SignalKind = "adaptive_generated"
)

// Signal is one recorded outcome.
type Signal struct {
	Variant string
	Kind    SignalKind
	Detail  string
}

// Signals are the per-variant maps steps use to pass outcomes downstream.
// A failure entry is a monotonic veto: once set for a variant it is never
// cleared, and later steps for that variant must honor it.
//
// Signals are written only by the action currently running; the executor
// never runs two actions at once, so no locking is needed.
type Signals struct {
	iconFailed map[string]string // variant -> reason
	iconCopied map[string]string // variant -> destination
	adaptive   map[string]string // variant -> destination
	warnings   []string

	observer func(Signal)
}

// Observe installs a callback invoked for every newly recorded signal.
func (s *Signals) Observe(fn func(Signal)) {
	s.observer = fn
}

func (s *Signals) notify(sig Signal) {
	if s.observer != nil {
		s.observer(sig)
	}
}

// MarkIconFailed vetoes a variant. The first reason is kept.
func (s *Signals) MarkIconFailed(variant, reason string) {
	if s.iconFailed == nil {
		s.iconFailed = make(map[string]string)
	}
	if _, ok := s.iconFailed[variant]; ok {
		return
	}
	s.iconFailed[variant] = reason
	// a veto invalidates any earlier success for the variant
	delete(s.iconCopied, variant)
	s.notify(Signal{Variant: variant, Kind: SignalIconFailed, Detail: reason})
}

// IconFailed reports whether the variant has been vetoed.
func (s *Signals) IconFailed(variant string) bool {
	_, ok := s.iconFailed[variant]
	return ok
}

// FailureReason returns the recorded veto reason for the variant.
func (s *Signals) FailureReason(variant string) string {
	return s.iconFailed[variant]
}

// MarkIconCopied records a successful copy. It refuses, returning false,
// when the variant is already vetoed.
func (s *Signals) MarkIconCopied(variant, dest string) bool {
	if s.IconFailed(variant) {
		return false
	}
	if s.iconCopied == nil {
		s.iconCopied = make(map[string]string)
	}
	s.iconCopied[variant] = dest
	s.notify(Signal{Variant: variant, Kind: SignalIconCopied, Detail: dest})
	return true
}

// CopiedIcon returns the destination of a successfully copied icon.
func (s *Signals) CopiedIcon(variant string) (string, bool) {
	dest, ok := s.iconCopied[variant]
	return dest, ok
}

// MarkAdaptiveGenerated records a generated adaptive icon.
func (s *Signals) MarkAdaptiveGenerated(variant, dest string) {
	if s.adaptive == nil {
		s.adaptive = make(map[string]string)
	}
	s.adaptive[variant] = dest
	s.notify(Signal{Variant: variant, Kind: SignalAdaptiveGenerated, Detail: dest})
}

// AdaptiveIcon returns the destination of a generated adaptive icon.
func (s *Signals) AdaptiveIcon(variant string) (string, bool) {
	dest, ok := s.adaptive[variant]
	return dest, ok
}

// Warn records a non-fatal warning line for the summary.
func (s *Signals) Warn(msg string) {
	s.warnings = append(s.warnings, msg)
}

// Warnings returns a copy of the recorded warnings.
func (s *Signals) Warnings() []string {
	return append([]string(nil), s.warnings...)
}

// VariantOutcome is the icon result for one variant.
type VariantOutcome struct {
	Variant  string `json:"variant" yaml:"variant"`
	Icon     string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Adaptive string `json:"adaptive,omitempty" yaml:"adaptive,omitempty"`
	Skipped  bool   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Reason   string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Outcomes reports the icon result of every variant that has an entry in
// icons, in variant order.
func (s *Signals) Outcomes(variants []string, icons map[string]string) []VariantOutcome {
	var out []VariantOutcome
	for _, v := range variants {
		src, configured := icons[v]
		if !configured {
			continue
		}
		o := VariantOutcome{Variant: v}
		switch {
		case src == "":
			o.Skipped = true
			o.Reason = "no icon selected"
		case s.IconFailed(v):
			o.Skipped = true
			o.Reason = s.FailureReason(v)
		default:
			o.Icon, _ = s.CopiedIcon(v)
			o.Adaptive, _ = s.AdaptiveIcon(v)
		}
		out = append(out, o)
	}
	return out
}
