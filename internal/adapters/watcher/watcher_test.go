package watcher

import (
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestFsnotifyOpToOperation(t *testing.T) {
	tests := []struct {
		name     string
		op       fsnotify.Op
		expected Operation
	}{
		{"Remove returns OpDelete", fsnotify.Remove, OpDelete},
		{"Rename returns OpDelete", fsnotify.Rename, OpDelete},
		{"Create returns OpCreate", fsnotify.Create, OpCreate},
		{"Write returns OpModify", fsnotify.Write, OpModify},
		{"Chmod returns OpModify", fsnotify.Chmod, OpModify},
		{"Remove takes precedence over Write", fsnotify.Remove | fsnotify.Write, OpDelete},
		{"Rename takes precedence over Create", fsnotify.Rename | fsnotify.Create, OpDelete},
		{"Create takes precedence over Write", fsnotify.Create | fsnotify.Write, OpCreate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := fsnotifyOpToOperation(tt.op)
			if result != tt.expected {
				t.Errorf("fsnotifyOpToOperation(%v) = %v, want %v", tt.op, result, tt.expected)
			}
		})
	}
}

func TestOperationString(t *testing.T) {
	tests := []struct {
		op       Operation
		expected string
	}{
		{OpCreate, "create"},
		{OpModify, "modify"},
		{OpDelete, "delete"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.op.String(); got != tt.expected {
				t.Errorf("Operation.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsShorelineFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"usa_CA_0.geojson", true},
		{"usa_CA_0.GEOJSON", true},
		{"/data/shorelines/aus_NSW_1.geojson", true},
		{"test.txt", false},
		{"test.geojson.bak", false},
		{"geojson", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := isShorelineFile(tt.path); got != tt.expected {
				t.Errorf("isShorelineFile(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}
