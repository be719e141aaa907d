package descriptions

import "sort"

// Tool descriptions with practical examples and workflows

const (
	PDFConsolidateRadioGroupsDescription = `Turn the independent radio widgets of a generated form into real radio groups.

**When to use:** A form generator emitted every radio option as its own one-widget field, so selecting one option does not clear the others.

**Why it's useful:** Each option becomes a kid of one parent field with a shared name, the on-states of the appearance streams are renamed to the export values, and the parent takes the first option's place in the field array. Forms that are already grouped are left alone.

**Records:** One record per option: field_name (group name), export (on-state), optional label, page_index, rect [x0 y0 x1 y1] in PDF points, order and tooltip. Pass them inline as JSON in 'records' or point 'records_path' at a JSON or YAML file. A records file may also carry a font_patch section.

**Examples:**
• Repair a generated intake form: "Consolidate intake.pdf using intake-records.yaml and write intake-fixed.pdf"
• Also hide text box borders: "Consolidate claim.pdf with strip_text_borders"
• Use an embedded signature font: "Consolidate consent.pdf and set signature_field to signature, font object 42 named Sig"

**Common workflows:**
1. pdf_search_directory → pdf_export_widgets → write records → pdf_consolidate_radio_groups
2. Consolidate with export_widget_data → compare the CSV against the records → rerun with corrected rects

**Best practices:** Write to output_path first and inspect the result before replacing the original. Unmatched records and appearance misses are listed as issues and do not fail the call.`

	PDFExportWidgetsDescription = `List every widget of a form with the data needed to write update records.

**When to use:** Before writing records for pdf_consolidate_radio_groups, or to audit a form after repair.

**Why it's useful:** Reports page, field name, type, rectangle, flags, read-only state, tooltip, on-state, export values, choices, object number and the printed caption to the right of each widget.

**Examples:**
• Plan a repair: "Export the widgets of intake.pdf so I can see which radios belong together"
• Keep a record: "Export widget data of intake-fixed.pdf with write_csv"

**Best practices:** Captions come from the page text and are a hint for labels, not ground truth.`

	PDFValidateFileDescription = `Verify that a file is a readable PDF and report its form fields.

**When to use:** Before consolidating a file of unknown origin, or after a repair to confirm the output still opens.

**Why it's useful:** Catches missing, empty, oversized and unparseable files early and reports the page count and the number of top level AcroForm fields.

**Examples:**
• Upload verification: "Check that uploaded-form.pdf is valid before repairing it"
• Post-repair check: "Validate intake-fixed.pdf"`

	PDFSearchDirectoryDescription = `Find PDF files below the configured directory with fuzzy name matching.

**When to use:** Need the path of a form before exporting or consolidating it.

**Why it's useful:** Matches every word of the query against the words of each file name and can restrict the results to files that carry an AcroForm.

**Examples:**
• "Find forms with 'intake' in their name"
• "List every fillable PDF" with forms_only

**Best practices:** Leave directory empty to search the whole configured directory.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_consolidate_radio_groups": PDFConsolidateRadioGroupsDescription,
	"pdf_export_widgets":           PDFExportWidgetsDescription,
	"pdf_validate_file":            PDFValidateFileDescription,
	"pdf_search_directory":         PDFSearchDirectoryDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the sorted names of all described tools
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
