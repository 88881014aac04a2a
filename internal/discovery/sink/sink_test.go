package sink

import (
	"context"
	"testing"
)

func TestNoopSinkDoesNothing(t *testing.T) {
	s := NewNoopSink()
	s.Publish(context.Background(), "io", "foo.io")
	if err := s.Close(); err != nil {
		t.Fatalf("Close() = %v, want nil", err)
	}
}

func TestBuildReturnsNoopWhenAddrEmpty(t *testing.T) {
	s := Build("")
	if _, ok := s.(noopSink); !ok {
		t.Fatalf("Build(\"\") = %T, want noopSink", s)
	}
}

func TestBuildReturnsRedisSinkWhenAddrSet(t *testing.T) {
	s := Build("localhost:6379")
	if _, ok := s.(*RedisSink); !ok {
		t.Fatalf("Build(addr) = %T, want *RedisSink", s)
	}
}
