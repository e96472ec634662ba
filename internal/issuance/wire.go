package issuance

import "google.golang.org/protobuf/encoding/protowire"

// ContentTypeProtobuf selects the binary response form.
const ContentTypeProtobuf = "application/x-protobuf"

// Binary response layout, compatible with:
//
//	message IssueResponse {
//	  repeated string ids = 1;
//	  repeated uint64 numeric_ids = 2; // packed
//	}
const (
	fieldIDs        protowire.Number = 1
	fieldNumericIDs protowire.Number = 2
)

func marshalIssueResponse(ids []string, numeric []uint64) []byte {
	var b []byte
	for _, id := range ids {
		b = protowire.AppendTag(b, fieldIDs, protowire.BytesType)
		b = protowire.AppendString(b, id)
	}
	if len(numeric) > 0 {
		var packed []byte
		for _, n := range numeric {
			packed = protowire.AppendVarint(packed, n)
		}
		b = protowire.AppendTag(b, fieldNumericIDs, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	return b
}
