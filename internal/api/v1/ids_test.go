package v1

import (
	"encoding/json"
	"testing"
)

func TestFormatNumeric_PreservesFullRange(t *testing.T) {
	got := FormatNumeric([]uint64{660741, ^uint64(0)})
	if got[0] != "660741" || got[1] != "18446744073709551615" {
		t.Fatalf("FormatNumeric = %v", got)
	}
}

func TestIssueResponse_OmitsNumericWhenEmpty(t *testing.T) {
	b, err := json.Marshal(IssueResponse{IDs: []string{"abc"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"ids":["abc"]}` {
		t.Fatalf("unexpected body %s", b)
	}
}
