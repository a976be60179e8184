package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewVersionValidateRejectsEmptyContent(t *testing.T) {
	draft := NewVersion{
		ContractID: uuid.New(),
		Content:    VersionContent{Text: "   \n\t"},
	}

	err := draft.Validate()
	if err == nil {
		t.Fatal("expected validation error for blank content")
	}
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "content" {
		t.Fatalf("expected content field rejection, got %+v", ve)
	}
}

func TestNewVersionValidateRequiresContract(t *testing.T) {
	draft := NewVersion{Content: VersionContent{Text: "body"}}

	if err := draft.Validate(); !IsValidation(err) {
		t.Fatalf("expected ValidationError for missing contract id, got %v", err)
	}
}

func TestNewVersionSummaryDefaults(t *testing.T) {
	draft := NewVersion{Summary: "  "}
	if got := draft.SummaryOrDefault(); got != DefaultChangesSummary {
		t.Fatalf("expected default summary, got %q", got)
	}

	draft.Summary = "Adjusted payment schedule"
	if got := draft.SummaryOrDefault(); got != "Adjusted payment schedule" {
		t.Fatalf("expected caller summary preserved, got %q", got)
	}
}
