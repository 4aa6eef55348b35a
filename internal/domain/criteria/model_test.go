package criteria

import "testing"

func TestCriterionValidate(t *testing.T) {
	conf := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		c       Criterion
		wantErr bool
	}{
		{"valid inclusion", Criterion{ProtocolID: "NCT01234567", Type: TypeInclusion, Text: "Age over 18", Status: StatusPending}, false},
		{"valid not-applicable", Criterion{ProtocolID: "NCT01234567", Type: TypeNotApplicable, Text: "Site-specific note", Status: StatusNeedsReview}, false},
		{"missing protocol", Criterion{Type: TypeInclusion, Text: "Age over 18", Status: StatusPending}, true},
		{"missing text", Criterion{ProtocolID: "NCT01234567", Type: TypeInclusion, Status: StatusPending}, true},
		{"bad type", Criterion{ProtocolID: "NCT01234567", Type: "maybe", Text: "x", Status: StatusPending}, true},
		{"bad status", Criterion{ProtocolID: "NCT01234567", Type: TypeInclusion, Text: "x", Status: "reviewed"}, true},
		{"confidence in range", Criterion{ProtocolID: "NCT01234567", Type: TypeInclusion, Text: "x", Status: StatusLikely, Confidence: conf(0.85)}, false},
		{"confidence out of range", Criterion{ProtocolID: "NCT01234567", Type: TypeInclusion, Text: "x", Status: StatusLikely, Confidence: conf(1.2)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
