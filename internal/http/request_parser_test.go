package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseActionInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		field   string
		want    string
		wantErr bool
	}{
		{"form encoded", "transfer_to=jd&transfer_amount=100", "transfer_amount", "100", false},
		{"json string", `{"login_user":"js","login_pin":"1111"}`, "login_user", "js", false},
		{"json number", `{"loan_amount": 1000.5}`, "loan_amount", "1000.5", false},
		{"json pin number", `{"login_pin": 1111}`, "login_pin", "1111", false},
		{"control characters dropped", "close_user=j%00s", "close_user", "js", false},
		{"spaces kept for the controller", "transfer_to=+jd+", "transfer_to", " jd ", false},
		{"empty body", "", "loan_amount", "", false},
		{"broken json", `{"loan_amount":`, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(tt.body))
			in, err := ParseActionInput(r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseActionInput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := in.Field(tt.field); got != tt.want {
				t.Errorf("Field(%q) = %q, want %q", tt.field, got, tt.want)
			}
			if in.Cleared() {
				t.Error("fresh input reports cleared")
			}
		})
	}
}

func TestRequirePOST(t *testing.T) {
	if resp := RequirePOST(httptest.NewRequest(http.MethodPost, "/", nil)); resp != nil {
		t.Error("POST rejected")
	}
	resp := RequirePOST(httptest.NewRequest(http.MethodGet, "/", nil))
	if resp == nil {
		t.Fatal("GET accepted")
	}
	w := httptest.NewRecorder()
	resp.Write(w)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", w.Code)
	}
}
