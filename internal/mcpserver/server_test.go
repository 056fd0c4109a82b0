package mcpserver

import (
	"reflect"
	"testing"

	"github.com/almahq/alma/internal/projects"
	"github.com/almahq/alma/internal/testutil"
)

func TestNewRegistersServer(t *testing.T) {
	svc := testutil.Service(t)
	registry := projects.NewRegistry(testutil.IndexStore(t))

	s := New(svc, registry)
	if s.MCPServer() == nil {
		t.Fatal("MCPServer is nil")
	}
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"go", []string{"go"}},
		{"go,notes", []string{"go", "notes"}},
		{" go , notes ,", []string{"go", "notes"}},
		{",,", []string{}},
	}
	for _, tt := range tests {
		if got := splitTags(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitTags(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
