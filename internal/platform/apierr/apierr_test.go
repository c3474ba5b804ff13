package apierr

import (
	"errors"
	"net/http"
	"testing"
)

func TestHelpersSetStatusAndCode(t *testing.T) {
	cases := []struct {
		got    *Error
		status int
		code   string
	}{
		{NotFound("BUILDING_NOT_FOUND", "building not found"), http.StatusNotFound, "BUILDING_NOT_FOUND"},
		{BadRequest("INVALID_TEMPERATURE", "temperature must be between 0 and 2"), http.StatusBadRequest, "INVALID_TEMPERATURE"},
		{Conflict("USERNAME_TAKEN", "username already registered"), http.StatusConflict, "USERNAME_TAKEN"},
		{Unauthorized("INVALID_TOKEN", "invalid or expired token"), http.StatusUnauthorized, "INVALID_TOKEN"},
	}
	for _, c := range cases {
		if c.got.Status != c.status {
			t.Errorf("%s: status = %d, want %d", c.code, c.got.Status, c.status)
		}
		if c.got.Code != c.code {
			t.Errorf("code = %q, want %q", c.got.Code, c.code)
		}
		if c.got.Err == nil || c.got.Error() == "" {
			t.Errorf("%s: missing wrapped cause", c.code)
		}
	}
}

func TestErrorUnwrapsAs(t *testing.T) {
	var apiErr *Error
	wrapped := NotFound("EVENT_NOT_FOUND", "event not found")
	if !errors.As(error(wrapped), &apiErr) {
		t.Fatal("errors.As failed to match *Error")
	}
	if apiErr.Code != "EVENT_NOT_FOUND" {
		t.Errorf("code = %q", apiErr.Code)
	}
}
