package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func samplePlan() []Rename {
	return []Rename{
		{
			From:    "img2.jpg",
			To:      "20200601_153000.jpg",
			OldTime: time.Date(2020, 6, 1, 14, 30, 0, 0, time.UTC),
			NewTime: time.Date(2020, 6, 1, 15, 30, 0, 0, time.UTC),
		},
		{
			From:    "holiday-10.jpg",
			To:      "20200601_160000.jpg",
			OldTime: time.Date(2020, 6, 1, 15, 0, 0, 0, time.UTC),
			NewTime: time.Date(2020, 6, 1, 16, 0, 0, 0, time.UTC),
		},
	}
}

func TestPrintPlanText(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Writer: &buf}
	p.PrintPlan(samplePlan())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	want := "  img2.jpg        2020-06-01 14:30:00  →  2020-06-01 15:30:00  20200601_153000.jpg"
	if lines[0] != want {
		t.Errorf("expected\n%q\ngot\n%q", want, lines[0])
	}
	if !strings.HasPrefix(lines[1], "  holiday-10.jpg  2020-06-01 15:00:00") {
		t.Errorf("unexpected second line %q", lines[1])
	}
}

func TestPrintPlanJSON(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{JSON: true, Writer: &buf}
	p.PrintPlan(samplePlan())
	p.PrintInfo("suppressed")
	p.PrintSuccess("suppressed")

	var got []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, buf.String())
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0]["from"] != "img2.jpg" || got[0]["to"] != "20200601_153000.jpg" || got[0]["new_time"] != "2020-06-01 15:30:00" {
		t.Errorf("unexpected entry %v", got[0])
	}
}

func TestPrintMetadata(t *testing.T) {
	m := &Metadata{
		FilePath: "a.jpg",
		Format:   "JPEG",
		Fields: []MetaField{
			{Key: "Make", Value: "TestCam", Category: "EXIF", Raw: "type=2 count=8"},
			{Key: "DateTimeOriginal", Value: "2020:06:01 14:30:00", Category: "EXIF", Editable: true},
		},
	}

	var buf bytes.Buffer
	(&Printer{Verbose: true, Writer: &buf}).PrintMetadata(m)
	out := buf.String()
	for _, s := range []string{"File  : a.jpg", "Brief : DateTimeOriginal: 2020:06:01 14:30:00", "TestCam", "type=2 count=8", "2020:06:01 14:30:00 [shifted]"} {
		if !strings.Contains(out, s) {
			t.Errorf("text output lacks %q:\n%s", s, out)
		}
	}
	if strings.Contains(out, "TestCam [shifted]") {
		t.Errorf("Make marked as shifted")
	}

	buf.Reset()
	(&Printer{JSON: true, Writer: &buf}).PrintMetadata(m)
	var got struct {
		File   string `json:"file"`
		Fields []struct {
			Key      string `json:"key"`
			Editable bool   `json:"editable"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.File != "a.jpg" || len(got.Fields) != 2 || !got.Fields[1].Editable {
		t.Errorf("unexpected JSON %+v", got)
	}

}

func TestSummary(t *testing.T) {
	tests := []struct {
		fields []MetaField
		want   string
	}{
		{[]MetaField{{Key: "Make", Value: "TestCam"}, {Key: "DateTimeOriginal", Value: "2020:06:01 14:30:00"}}, "DateTimeOriginal: 2020:06:01 14:30:00"},
		{[]MetaField{{Key: "Model", Value: "T-1000"}, {Key: "Make", Value: "TestCam"}}, "Make: TestCam"},
		{[]MetaField{{Key: "Orientation", Value: "1"}}, "JPEG"},
		{nil, "JPEG"},
	}
	for _, tt := range tests {
		m := &Metadata{Format: "JPEG", Fields: tt.fields}
		if got := m.Summary(); got != tt.want {
			t.Errorf("Summary of %v = %q, expected %q", tt.fields, got, tt.want)
		}
	}
}
