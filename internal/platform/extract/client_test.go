package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ET-NoahDolev/medgemma-hackathon-sub000/internal/domain/mapping"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func TestListProtocols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/protocols" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("skip") != "0" || r.URL.Query().Get("limit") != "50" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode([]ProtocolSummary{
			{ProtocolID: "p1", Title: "Trial A", ProcessingStatus: "extracting", ProcessedCount: 3, TotalEstimated: 12},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	protocols, err := c.ListProtocols(context.Background(), 0, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(protocols) != 1 || protocols[0].ProtocolID != "p1" {
		t.Errorf("unexpected result: %+v", protocols)
	}
}

func TestGround(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/criteria/c1/ground" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []GroundingCandidate{{Code: "73211009", Display: "Diabetes mellitus", Confidence: 0.93}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	candidates, err := c.Ground(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Code != "73211009" {
		t.Errorf("unexpected candidates: %+v", candidates)
	}
}

func TestSendFeedback_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad criterion", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	err := c.SendFeedback(context.Background(), "c1", FeedbackRequest{CriterionID: "c1", Action: "add_code", SnomedCodeAdded: "X"})
	if err == nil {
		t.Fatal("expected error for 422 response")
	}
}

func TestSuggestFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/field-mapping/suggest" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["text"] != "age between 18 and 65" {
			t.Errorf("unexpected text: %q", body["text"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"suggestions": []FieldSuggestion{{Field: "demographics.age", Value: "18 - 65"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	suggestions, err := c.SuggestFields(context.Background(), "age between 18 and 65")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Field != "demographics.age" {
		t.Errorf("unexpected suggestions: %+v", suggestions)
	}
}

func TestFeedbackSubmitter_TranslatesOperations(t *testing.T) {
	var got []FeedbackRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req FeedbackRequest
		json.NewDecoder(r.Body).Decode(&req)
		got = append(got, req)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	sub := NewFeedbackSubmitter(c)

	id := uuid.New()
	fm := &mapping.FieldMapping{TargetField: "labs.hba1c", Relation: mapping.RelLt, TargetValue: "7.0"}
	ops := []mapping.Operation{
		{CriterionID: id, Action: mapping.ActionAddCode, Code: "C"},
		{CriterionID: id, Action: mapping.ActionRemoveCode, Code: "A"},
		{CriterionID: id, Action: mapping.ActionAddMapping, Mapping: fm},
	}
	for _, op := range ops {
		if err := sub.Submit(context.Background(), op); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 feedback calls, got %d", len(got))
	}
	if got[0].SnomedCodeAdded != "C" || got[0].Action != "add_code" {
		t.Errorf("unexpected first request: %+v", got[0])
	}
	if got[1].SnomedCodeRemoved != "A" {
		t.Errorf("unexpected second request: %+v", got[1])
	}
	if got[2].FieldMappingAdded == nil || got[2].FieldMappingAdded.TargetField != "labs.hba1c" {
		t.Errorf("unexpected third request: %+v", got[2])
	}
}

func TestFeedbackSubmitter_UnknownAction(t *testing.T) {
	c := NewClient("http://localhost:1", testLogger())
	sub := NewFeedbackSubmitter(c)
	err := sub.Submit(context.Background(), mapping.Operation{CriterionID: uuid.New(), Action: "explode"})
	if err == nil {
		t.Fatal("expected error for unknown action")
	}
}
