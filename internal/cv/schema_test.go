package cv

import (
	"strings"
	"testing"
)

const validRecordJSON = `{
  "personalInfo": {"name": "X. Example (Xandra)", "availability": "Immediately", "hours": "36"},
  "experience": [
    {"period": "07/2023 - present", "employer": "City of The Hague", "role": "Youth and Family Coach", "bullets": ["Coaching families;", "Drafting care plans."]}
  ],
  "education": [
    {"period": "2015 - 2020", "degree": "BSc Social Work", "status": "diploma obtained"}
  ],
  "courses": [],
  "languages": ["Dutch", "English"]
}`

func TestDecodeValidRecord(t *testing.T) {
	rec, err := Decode([]byte(validRecordJSON))
	if err != nil {
		t.Fatalf("decode valid record: %v", err)
	}
	if rec.PersonalInfo.Name != "X. Example (Xandra)" {
		t.Fatalf("unexpected name: %q", rec.PersonalInfo.Name)
	}
	if len(rec.Experience) != 1 || len(rec.Experience[0].Bullets) != 2 {
		t.Fatalf("experience not decoded: %+v", rec.Experience)
	}
	if rec.Analysis != nil {
		t.Fatalf("analysis should be absent, got %+v", rec.Analysis)
	}
}

func TestDecodeMissingRequiredField(t *testing.T) {
	raw := `{"personalInfo": {"name": "A"}, "experience": [], "education": [], "languages": []}`
	_, err := Decode([]byte(raw))
	if err == nil {
		t.Fatal("expected schema violation for missing availability")
	}
	if !strings.Contains(err.Error(), "schema violation") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	if _, err := Decode([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestDecodeWrongBulletType(t *testing.T) {
	raw := `{
	  "personalInfo": {"name": "A", "availability": "now"},
	  "experience": [{"period": "p", "employer": "e", "role": "r", "bullets": [1, 2]}],
	  "education": [],
	  "languages": []
	}`
	if _, err := Decode([]byte(raw)); err == nil {
		t.Fatal("expected schema violation for non-string bullets")
	}
}
