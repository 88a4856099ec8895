package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

const testClientJSON = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_InvalidClientJSON(t *testing.T) {
	_, err := New(context.Background(), Options{
		SpreadsheetID: "test-id",
		ClientJSON:    "invalid-json",
		TokenJSON:     `{"access_token":"test"}`,
	})
	if err == nil {
		t.Fatal("expected error with invalid JSON")
	}
	if !strings.Contains(err.Error(), "oauth config") {
		t.Errorf("expected oauth config error, got: %v", err)
	}
}

func TestNewSheetsService_MissingOAuthClient(t *testing.T) {
	_, err := newSheetsService(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected error for missing oauth client")
	}
	expectedMsg := "missing oauth client (set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE)"
	if err.Error() != expectedMsg {
		t.Errorf("expected %q, got %q", expectedMsg, err.Error())
	}
}

func TestNewSheetsService_MissingOAuthToken(t *testing.T) {
	_, err := newSheetsService(context.Background(), Options{ClientJSON: testClientJSON})
	if err == nil {
		t.Fatal("expected error for missing oauth token")
	}
	expectedMsg := "missing oauth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE)"
	if err.Error() != expectedMsg {
		t.Errorf("expected %q, got %q", expectedMsg, err.Error())
	}
}

func TestNewSheetsService_InvalidToken(t *testing.T) {
	_, err := newSheetsService(context.Background(), Options{ClientJSON: testClientJSON, TokenJSON: "invalid-json"})
	if err == nil {
		t.Fatal("expected error with invalid token JSON")
	}
	if !strings.Contains(err.Error(), "oauth token") {
		t.Errorf("expected token parsing error, got: %v", err)
	}
}

func TestNewSheetsService_FromFiles(t *testing.T) {
	dir := t.TempDir()
	clientFile := filepath.Join(dir, "client.json")
	tokenFile := filepath.Join(dir, "token.json")
	if err := os.WriteFile(clientFile, []byte(testClientJSON), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tokenFile, []byte(`{"access_token":"test","token_type":"Bearer"}`), 0600); err != nil {
		t.Fatal(err)
	}

	svc, err := newSheetsService(context.Background(), Options{ClientFile: clientFile, TokenFile: tokenFile})
	if err != nil {
		t.Fatalf("newSheetsService() error = %v", err)
	}
	if svc == nil {
		t.Fatal("expected a service")
	}

	_, err = newSheetsService(context.Background(), Options{ClientFile: filepath.Join(dir, "missing.json")})
	if err == nil || !strings.Contains(err.Error(), "oauth client") {
		t.Errorf("expected read error for missing client file, got %v", err)
	}
}

func TestJsonUnmarshalIndirection(t *testing.T) {
	data := []byte(`{"access_token":"test","token_type":"Bearer"}`)
	var token oauth2.Token

	if err := jsonUnmarshal(data, &token); err != nil {
		t.Fatalf("jsonUnmarshal failed: %v", err)
	}
	if token.AccessToken != "test" {
		t.Errorf("expected access token 'test', got %s", token.AccessToken)
	}

	if err := jsonUnmarshal([]byte(`{invalid json}`), &token); err == nil {
		t.Fatal("expected error with invalid JSON")
	}
}

func TestMonthSheetName(t *testing.T) {
	tests := []struct {
		base  string
		year  int
		month int
		want  string
	}{
		{"Inventory", 2024, 3, "Inventory 2024-03"},
		{"جرد", 2025, 12, "جرد 2025-12"},
	}
	for _, tt := range tests {
		if got := monthSheetName(tt.base, tt.year, tt.month); got != tt.want {
			t.Errorf("monthSheetName(%q, %d, %d) = %q, want %q", tt.base, tt.year, tt.month, got, tt.want)
		}
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("Bob's 2024-03"); got != "'Bob''s 2024-03'" {
		t.Errorf("quoteSheet() = %q", got)
	}
}

func TestWriteMatrix_Uninitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if _, err := c.WriteMatrix(context.Background(), "x", nil); err == nil || err.Error() != "sheets service not initialized" {
		t.Errorf("expected uninitialized error, got %v", err)
	}
	if _, err := c.FetchCategories(context.Background()); err == nil {
		t.Error("expected error from FetchCategories without a service")
	}
}

func TestToValues(t *testing.T) {
	got := toValues([][]string{{"a", "1.50"}, {}})
	if len(got) != 2 || got[0][1] != "1.50" || len(got[1]) != 0 {
		t.Errorf("toValues() = %v", got)
	}
}
