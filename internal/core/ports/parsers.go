package ports

import "rtcdiag/internal/core/domain"

// DumpParser converts one dump format into the canonical session model.
type DumpParser interface {
	Format() domain.DumpFormat
	Parse(content string) (*domain.Session, error)
}

// SessionParser detects the format of a dump and parses it.
type SessionParser interface {
	Detect(content string) (domain.DumpFormat, error)
	Parse(content string) (*domain.Session, error)
	ParseAs(format domain.DumpFormat, content string) (*domain.Session, error)
}
