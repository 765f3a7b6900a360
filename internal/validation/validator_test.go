// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package validation

import (
	"strings"
	"testing"
)

type accessRequest struct {
	Action  string `validate:"required,action"`
	Country string `validate:"omitempty,max=100"`
}

type documentRequest struct {
	Title string `validate:"required,max=500"`
	Type  string `validate:"required,doctype"`
}

func TestValidateStructPasses(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
	}{
		{"valid action", &accessRequest{Action: "VIEW"}},
		{"citation action", &accessRequest{Action: "CITATION"}},
		{"valid document", &documentRequest{Title: "Coastal Trade Routes", Type: "Paper"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if verr := ValidateStruct(tt.in); verr != nil {
				t.Errorf("unexpected validation error: %v", verr)
			}
		})
	}
}

func TestValidateStructFails(t *testing.T) {
	tests := []struct {
		name      string
		in        interface{}
		wantField string
	}{
		{"missing action", &accessRequest{}, "Action"},
		{"unknown action", &accessRequest{Action: "BORROW"}, "Action"},
		{"broadcast-only action", &accessRequest{Action: "UPLOAD"}, "Action"},
		{"lowercase action", &accessRequest{Action: "view"}, "Action"},
		{"unknown doc type", &documentRequest{Title: "X", Type: "Thesis"}, "Type"},
		{"missing title", &documentRequest{Type: "Book"}, "Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(tt.in)
			if verr == nil {
				t.Fatal("expected validation error")
			}

			found := false
			for _, fe := range verr.Errors() {
				if fe.Field() == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected failure on field %s, got %v", tt.wantField, verr)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	verr := ValidateStruct(&documentRequest{})
	if verr == nil {
		t.Fatal("expected validation error")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "Title is required") {
		t.Errorf("message %q should mention missing title", apiErr.Message)
	}
	if _, ok := apiErr.Details["title"]; !ok {
		t.Errorf("details missing title entry: %v", apiErr.Details)
	}
	if _, ok := apiErr.Details["type"]; !ok {
		t.Errorf("details missing type entry: %v", apiErr.Details)
	}
}
