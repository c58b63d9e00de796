package web_test

import (
	"errors"
	"testing"

	"instatistics/internal/adapters/web"
	"instatistics/internal/domain"
)

func TestParseUsername(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{input: "natgeo", want: "natgeo"},
		{input: "  @nasa ", want: "nasa"},
		{input: "https://www.instagram.com/natgeo/", want: "natgeo"},
		{input: "instagram.com/the.rock?hl=en", want: "the.rock"},
		{input: "http://instagram.com/some_user", want: "some_user"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := web.ParseUsername(tc.input); got != tc.want {
				t.Errorf("ParseUsername(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNewProfileRequest_Valid(t *testing.T) {
	// Arrange
	username, limit := "@natgeo", "150"

	// Act
	req, err := web.NewProfileRequest(username, limit)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Username != "natgeo" || req.Limit != 150 {
		t.Errorf("got %+v, want natgeo/150", req)
	}
}

func TestNewProfileRequest_DefaultLimit(t *testing.T) {
	req, err := web.NewProfileRequest("natgeo", "")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Limit != 50 {
		t.Errorf("Limit: got %d, want 50", req.Limit)
	}
}

func TestNewProfileRequest_Invalid(t *testing.T) {
	testCases := []struct {
		name     string
		username string
		limit    string
	}{
		{name: "empty username", username: "  ", limit: "50"},
		{name: "bad characters", username: "not a user!", limit: "50"},
		{name: "too long", username: "abcdefghijklmnopqrstuvwxyz012345", limit: "50"},
		{name: "limit below range", username: "natgeo", limit: "0"},
		{name: "limit above range", username: "natgeo", limit: "1050"},
		{name: "limit off step", username: "natgeo", limit: "75"},
		{name: "limit not a number", username: "natgeo", limit: "many"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := web.NewProfileRequest(tc.username, tc.limit)

			if !errors.Is(err, domain.ErrInvalidProfile) {
				t.Errorf("expected ErrInvalidProfile, got %v", err)
			}
		})
	}
}
