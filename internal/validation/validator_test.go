package validation

import (
	"errors"
	"testing"

	"github.com/dopamind/dopamind/internal/domain"
)

type testRequest struct {
	UserID     string         `json:"user_id" validate:"required"`
	RewardType string         `json:"reward_type" validate:"required,rewardcategory"`
	Context    map[string]any `json:"context" validate:"required"`
	Days       int            `json:"days" validate:"min=0,max=365"`
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	req := testRequest{UserID: "u1", RewardType: "like", Context: map[string]any{}}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStruct_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		req   testRequest
		field string
	}{
		{"user_id", testRequest{RewardType: "like", Context: map[string]any{}}, "user_id"},
		{"reward_type", testRequest{UserID: "u1", Context: map[string]any{}}, "reward_type"},
		{"context", testRequest{UserID: "u1", RewardType: "like"}, "context"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if !errors.Is(err, domain.ErrMissingField) {
				t.Errorf("err = %v, want ErrMissingField", err)
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("err does not match ErrInvalidInput")
			}
			want := "Missing required field: " + tt.field
			if err.Error() != want {
				t.Errorf("Error() = %q, want %q", err.Error(), want)
			}
		})
	}
}

func TestValidateStruct_InvalidRewardType(t *testing.T) {
	req := testRequest{UserID: "u1", RewardType: "invalid_type", Context: map[string]any{}}
	err := ValidateStruct(&req)
	if !errors.Is(err, domain.ErrInvalidRewardCategory) {
		t.Fatalf("err = %v, want ErrInvalidRewardCategory", err)
	}
	if err.Error() != domain.InvalidRewardMessage() {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidateStruct_Range(t *testing.T) {
	req := testRequest{UserID: "u1", RewardType: "like", Context: map[string]any{}, Days: 400}
	err := ValidateStruct(&req)
	var ve *RequestValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *RequestValidationError", err)
	}
	if len(ve.Errors()) != 1 || ve.Errors()[0].Field != "days" || ve.Errors()[0].Tag != "max" {
		t.Errorf("Errors() = %+v", ve.Errors())
	}
	if errors.Is(err, domain.ErrMissingField) {
		t.Error("range failure should not be ErrMissingField")
	}
}

func TestValidateStruct_MultipleFailuresJoined(t *testing.T) {
	err := ValidateStruct(&testRequest{})
	want := "Missing required field: user_id; Missing required field: reward_type; Missing required field: context"
	if err == nil || err.Error() != want {
		t.Errorf("Error() = %v, want %q", err, want)
	}
}
