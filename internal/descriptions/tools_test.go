package descriptions

import (
	"strings"
	"testing"
)

func TestGetToolDescription(t *testing.T) {
	for _, name := range GetAllToolNames() {
		desc := GetToolDescription(name)
		if !strings.Contains(desc, "**When to use:**") {
			t.Errorf("description of %s lacks a usage section", name)
		}
	}
	if got := GetToolDescription("pdf_unknown"); got != "Tool description not available" {
		t.Errorf("GetToolDescription(unknown) = %q", got)
	}
}

func TestGetAllToolNames(t *testing.T) {
	want := []string{
		"pdf_consolidate_radio_groups",
		"pdf_export_widgets",
		"pdf_search_directory",
		"pdf_validate_file",
	}
	got := GetAllToolNames()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("GetAllToolNames() = %v, want %v", got, want)
	}
}
