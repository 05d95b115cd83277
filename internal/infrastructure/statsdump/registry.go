package statsdump

import (
	"fmt"

	"rtcdiag/internal/core/domain"
	"rtcdiag/internal/core/ports"
)

// Registry selects a parser by detected format.
type Registry struct {
	parsers map[domain.DumpFormat]ports.DumpParser
}

// NewRegistry builds a registry from parsers; later parsers replace earlier
// ones registered for the same format.
func NewRegistry(parsers ...ports.DumpParser) *Registry {
	r := &Registry{parsers: make(map[domain.DumpFormat]ports.DumpParser, len(parsers))}
	for _, p := range parsers {
		r.parsers[p.Format()] = p
	}
	return r
}

// NewDefaultRegistry registers the event-log and snapshot parsers.
func NewDefaultRegistry() *Registry {
	return NewRegistry(NewEventLogParser(), NewSnapshotParser())
}

func (r *Registry) Detect(content string) (domain.DumpFormat, error) {
	return Detect(content)
}

// Parse detects the dump format and runs the matching parser.
func (r *Registry) Parse(content string) (*domain.Session, error) {
	format, err := Detect(content)
	if err != nil {
		return nil, err
	}
	parser, ok := r.parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: no parser registered for %s", domain.ErrUnrecognizedFormat, format)
	}
	return parser.Parse(content)
}

// ParseAs runs the parser registered for format. Content recognized as
// another format fails with domain.ErrNotExpectedFormat; content that is not
// recognized at all is left to the parser to reject.
func (r *Registry) ParseAs(format domain.DumpFormat, content string) (*domain.Session, error) {
	parser, ok := r.parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: no parser registered for %s", domain.ErrUnrecognizedFormat, format)
	}
	if detected, err := Detect(content); err == nil && detected != format {
		return nil, fmt.Errorf("%w: expected %s, got %s", domain.ErrNotExpectedFormat, format, detected)
	}
	return parser.Parse(content)
}

// ParseDump parses content with the default parsers.
func ParseDump(content string) (*domain.Session, error) {
	return NewDefaultRegistry().Parse(content)
}
