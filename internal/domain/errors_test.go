package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDomainErrorFormat(t *testing.T) {
	err := NewDomainError("Registry.Get", ErrToolNotFound, "search")
	if !strings.Contains(err.Error(), "Registry.Get") || !strings.Contains(err.Error(), "search") {
		t.Errorf("unexpected format: %s", err)
	}
	if !errors.Is(err, ErrToolNotFound) {
		t.Error("DomainError does not unwrap to its sentinel")
	}
}

func TestWrapOp(t *testing.T) {
	if WrapOp("op", nil) != nil {
		t.Error("WrapOp(nil) should be nil")
	}
	err := WrapOp("load config", ErrConfigLoad)
	if !errors.Is(err, ErrConfigLoad) {
		t.Error("WrapOp lost the sentinel")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("search", "query", "is required")
	if !strings.Contains(err.Error(), "search") || !strings.Contains(err.Error(), "query") {
		t.Errorf("unexpected format: %s", err)
	}
	if !IsValidation(err) {
		t.Error("IsValidation(ValidationError) = false")
	}
	if !IsValidation(fmt.Errorf("outer: %w", err)) {
		t.Error("IsValidation should see through wrapping")
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError does not unwrap to ErrInvalidInput")
	}
	if IsValidation(ErrTimeout) {
		t.Error("IsValidation(ErrTimeout) = true")
	}
}
