// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package framegraph_test

import (
	"testing"

	"github.com/gviegas/scene/framegraph"
)

func TestInternIsStableAndAppendOnly(t *testing.T) {
	a := framegraph.Intern("test-intern-gbuffer-albedo")
	b := framegraph.Intern("test-intern-gbuffer-normal")
	c := framegraph.Intern("test-intern-gbuffer-albedo")

	if a == b {
		t.Fatal("distinct names interned to the same id")
	}
	if a != c {
		t.Fatal("interning the same name twice produced different ids")
	}
	if framegraph.Name(a) != "test-intern-gbuffer-albedo" {
		t.Errorf("Name(a) = %q, want the original string", framegraph.Name(a))
	}
}
