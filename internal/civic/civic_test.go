package civic

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNeedValidate(t *testing.T) {
	valid := Need{Title: "Overton Park Landscaping", Category: "Services", Budget: decimal.NewFromInt(14500), Deadline: "2026-11-30"}

	tests := []struct {
		name    string
		mutate  func(n *Need)
		wantErr string
	}{
		{name: "valid"},
		{name: "no deadline", mutate: func(n *Need) { n.Deadline = "" }},
		{name: "zero budget", mutate: func(n *Need) { n.Budget = decimal.Zero }},
		{name: "no title", mutate: func(n *Need) { n.Title = "" }},
		{name: "no category", mutate: func(n *Need) { n.Category = "" }},
		{name: "negative budget", mutate: func(n *Need) { n.Budget = decimal.NewFromInt(-1) }, wantErr: "Budget"},
		{name: "bad deadline", mutate: func(n *Need) { n.Deadline = "30/11/2026" }, wantErr: "Deadline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			need := valid
			if tt.mutate != nil {
				tt.mutate(&need)
			}

			err := need.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestProposalValidate(t *testing.T) {
	p := Proposal{
		ProcurementID: "1",
		BusinessInfo:  BusinessInfo{Name: "GreenScape", Email: "bids@greenscape.example"},
		Price:         decimal.NewFromInt(13900),
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.BusinessInfo.Email = "greenscape"
	if err := p.Validate(); err == nil || !strings.Contains(err.Error(), "Email") {
		t.Fatalf("expected email error, got %v", err)
	}

	p.BusinessInfo.Email = "bids@greenscape.example"
	p.ProcurementID = ""
	if err := p.Validate(); err == nil || !strings.Contains(err.Error(), "ProcurementID") {
		t.Fatalf("expected procurement id error, got %v", err)
	}
}

func TestMoneyIsAJSONNumber(t *testing.T) {
	data, err := json.Marshal(Need{Title: "t", Category: "c", Budget: decimal.RequireFromString("14500.5")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"budget":14500.5`) {
		t.Fatalf("expected numeric budget, got %s", data)
	}

	var p Proposal
	if err := json.Unmarshal([]byte(`{"procurementId":"1","price":13900}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.Price.Equal(decimal.NewFromInt(13900)) {
		t.Fatalf("unexpected price %s", p.Price)
	}
}

func TestProcurementFlattensNeed(t *testing.T) {
	var p Procurement
	if err := json.Unmarshal([]byte(`{"id":"42","title":"Overton","category":"Services","budget":14500,"postedDate":"2026-10-01T12:00:00Z"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ID != "42" || p.Title != "Overton" || !p.Budget.Equal(decimal.NewFromInt(14500)) || p.PostedDate.IsZero() {
		t.Fatalf("unexpected procurement: %+v", p)
	}
}
