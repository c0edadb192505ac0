package task

import (
	"testing"
)

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{"pending", StatusPending, true},
		{"cancel", StatusCancel, true},
		{"completed", StatusCompleted, true},
		{"delete", StatusDelete, true},
		{"lowercase", Status("pending"), false},
		{"unknown", Status("FOO"), false},
		{"empty", Status(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.want {
				t.Errorf("Status(%q).IsValid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestDate_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"midnight utc", "2024-01-01T00:00:00.000Z", "2024-01-01T00:00:00.000Z"},
		{"with millis", "2024-05-01T10:00:00.000Z", "2024-05-01T10:00:00.000Z"},
		{"no fraction normalized", "2024-05-01T10:00:00Z", "2024-05-01T10:00:00.000Z"},
		{"offset normalized to utc", "2024-05-01T12:00:00.000+02:00", "2024-05-01T10:00:00.000Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms, err := ParseDate(tt.input)
			if err != nil {
				t.Fatalf("ParseDate(%q) error = %v", tt.input, err)
			}
			if got := FormatDate(ms); got != tt.want {
				t.Errorf("FormatDate(ParseDate(%q)) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, input := range []string{"", "not-a-date", "2024-13-01T00:00:00Z", "01/05/2024"} {
		if _, err := ParseDate(input); err == nil {
			t.Errorf("ParseDate(%q) expected error, got nil", input)
		}
	}
}

func TestDocument_RoundTrip(t *testing.T) {
	ms, err := ParseDate("2024-05-01T10:00:00.000Z")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}

	doc := ToDocument("u1", "A", "B", ms, StatusPending)

	got := FromDocument("task-1", doc)
	want := Task{
		ID:          "task-1",
		Title:       "A",
		Description: "B",
		Date:        "2024-05-01T10:00:00.000Z",
		Status:      StatusPending,
		UserID:      "u1",
	}
	if got != want {
		t.Errorf("FromDocument() = %+v, want %+v", got, want)
	}
}

func TestFromDocument_DecodedJSONNumbers(t *testing.T) {
	// json.Unmarshal yields float64 for stored timestamps.
	fields := map[string]any{
		FieldTitle:       "A",
		FieldDescription: "B",
		FieldDate:        float64(1714557600000),
		FieldStatus:      "COMPLETED",
		FieldUserID:      "u1",
	}

	got := FromDocument("task-2", fields)
	if got.Date != "2024-05-01T10:00:00.000Z" {
		t.Errorf("Date = %q, want %q", got.Date, "2024-05-01T10:00:00.000Z")
	}
	if got.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", got.Status, StatusCompleted)
	}
}
