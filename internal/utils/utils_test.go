package utils

import (
	"testing"
	"time"

	"dayflow-backend/internal/clock"
)

func testIssuer(clk clock.Clock) *TokenIssuer {
	return NewTokenIssuer(TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessMinutes: 15,
		RefreshHours:  168,
	}, clk)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC))
	issuer := testIssuer(clk)

	token, err := issuer.GenerateAccessToken("user-1", "hr", "EMP001")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := issuer.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "hr" || claims.EmployeeID != "EMP001" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	clk.Advance(16 * time.Minute)
	if _, err := issuer.ParseAccessToken(token); err == nil {
		t.Fatalf("expected expired access token to be rejected")
	}
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	issuer := testIssuer(clock.NewFixed(time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)))

	refresh, _ := issuer.GenerateRefreshToken("user-1")
	if _, err := issuer.ParseAccessToken(refresh); err == nil {
		t.Fatalf("refresh token accepted as access token")
	}
	access, _ := issuer.GenerateAccessToken("user-1", "employee", "")
	if _, err := issuer.ParseRefreshToken(access); err == nil {
		t.Fatalf("access token accepted as refresh token")
	}

	other, _ := issuer.GenerateRefreshToken("user-1")
	if other == refresh {
		t.Fatalf("refresh tokens issued in the same instant must differ")
	}
	claims, err := issuer.ParseRefreshToken(refresh)
	if err != nil || claims.Subject != "user-1" {
		t.Fatalf("parse refresh: %v %+v", err, claims)
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret123" {
		t.Fatalf("password stored in clear")
	}
	if !CheckPassword(hash, "secret123") || CheckPassword(hash, "wrong") {
		t.Fatalf("password check mismatch")
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-01-10", time.UTC)
	if err != nil || !got.Equal(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date only: %v %v", got, err)
	}
	got, err = ParseDate("2026-02-01T15:04:05Z", time.UTC)
	if err != nil || !got.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339: %v %v", got, err)
	}
	if _, err := ParseDate("10/01/2026", time.UTC); err == nil {
		t.Fatalf("expected error for unsupported layout")
	}
}

func TestMonthLabel(t *testing.T) {
	if got := MonthLabel(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)); got != "January 2026" {
		t.Fatalf("got %q", got)
	}
}

func TestPagination(t *testing.T) {
	page, limit := ParsePage("", "", 31)
	if page != 1 || limit != 31 {
		t.Fatalf("defaults: %d %d", page, limit)
	}
	page, limit = ParsePage("3", "1000", 10)
	if page != 3 || limit != MaxPageLimit {
		t.Fatalf("clamp: %d %d", page, limit)
	}
	if p := NewPagination(21, 1, 10); p.TotalPages != 3 {
		t.Fatalf("total pages: %+v", p)
	}
	if p := NewPagination(0, 1, 10); p.TotalPages != 0 {
		t.Fatalf("empty total pages: %+v", p)
	}
}
