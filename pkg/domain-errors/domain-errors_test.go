package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// These primitives sit at every trust boundary: the handlers translate codes
// into HTTP statuses, so "wrapped domain errors preserve original code" and
// "errors.Is matches by code" must hold.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "tenant not found"}
		s.Equal("tenant not found", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeCatalogUnavailable}
		s.Equal("catalog_unavailable", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("database connection failed")
		err := &Error{Code: CodeCatalogUnavailable, Message: "schema listing failed", Err: inner}
		s.Equal(inner, err.Unwrap())
	})

	s.Run("works with errors.Unwrap", func() {
		inner := errors.New("root cause")
		err := &Error{Code: CodeInternal, Err: inner}
		s.Equal(inner, errors.Unwrap(err))
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeNotFound, Message: "tenant not found"}
		err2 := &Error{Code: CodeNotFound, Message: "schema not found"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		denied := &Error{Code: CodeAccessDenied}
		missing := &Error{Code: CodeNotFound}
		s.False(denied.Is(missing))
	})

	s.Run("errors.Is traverses wrapped chains", func() {
		inner := New(CodeAuditWriteFailed, "append failed")
		outer := Wrap(inner, CodeInternal, "audit sink")
		s.True(errors.Is(outer, &Error{Code: CodeAuditWriteFailed}))
	})
}

func (s *DomainErrorsSuite) TestWrapPreservesCode() {
	inner := New(CodeNotFound, "schema missing")
	wrapped := Wrap(inner, CodeInternal, "resolve tenant")

	s.True(HasCode(wrapped, CodeNotFound), "wrapping must not mask the original code")
	s.False(HasCode(wrapped, CodeInternal))
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.True(HasCode(New(CodeUnauthenticated, ""), CodeUnauthenticated))
	s.False(HasCode(errors.New("plain"), CodeUnauthenticated))
	s.False(HasCode(nil, CodeUnauthenticated))
}
