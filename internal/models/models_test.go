package models

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

func TestMatchRun_Fields(t *testing.T) {
	typ := reflect.TypeOf(MatchRun{})
	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "size:36")
	assertGormTag(t, typ, "Trigger", "index")
	assertGormTag(t, typ, "Trades", "foreignKey:RunID")
}

func TestTradeRecord_Fields(t *testing.T) {
	typ := reflect.TypeOf(TradeRecord{})
	assertGormTag(t, typ, "ID", "autoIncrement")
	assertGormTag(t, typ, "RunID", "index")
	assertGormTag(t, typ, "GiverID", "index")
}

func TestWant_Matches(t *testing.T) {
	book := Item{ID: 1, Category: "books", Value: 10}
	tests := []struct {
		name string
		want Want
		ok   bool
	}{
		{"category hit", NewCategoryWant("books"), true},
		{"category miss", NewCategoryWant("music"), false},
		{"category is case sensitive", NewCategoryWant("Books"), false},
		{"valued inside band", NewValuedWant(7, "books", 12), true},
		{"valued at band edge", NewValuedWant(7, "books", 8), true},
		{"valued outside band", NewValuedWant(7, "books", 12.5), false},
		{"valued wrong category", NewValuedWant(7, "music", 10), false},
		{"malformed valued degrades", NewValuedWant(7, "books", 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.want.Matches(book, DefaultTolerance); got != tt.ok {
				t.Errorf("Matches = %v, want %v", got, tt.ok)
			}
		})
	}
}

func TestWant_Target(t *testing.T) {
	item := Item{Category: "books", Value: 10}
	if got := NewCategoryWant("books").Target(item); got != 10 {
		t.Errorf("category Target = %v, want 10", got)
	}
	if got := NewValuedWant(1, "books", 11).Target(item); got != 11 {
		t.Errorf("valued Target = %v, want 11", got)
	}
}

func TestParticipant_AddGiveRejectsDuplicate(t *testing.T) {
	p := NewParticipant(1, "ann", 0, 0)
	if err := p.AddGive(Item{ID: 5, Category: "books"}); err != nil {
		t.Fatalf("first AddGive: %v", err)
	}
	err := p.AddGive(Item{ID: 5, Category: "music"})
	if !errors.Is(err, ErrDuplicateItem) {
		t.Fatalf("err = %v, want ErrDuplicateItem", err)
	}
	if len(p.Give) != 1 {
		t.Errorf("len(Give) = %d, want 1", len(p.Give))
	}
}

func TestParticipant_Check(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		wantErr  bool
	}{
		{"origin", 0, 0, false},
		{"poles", 90, -180, false},
		{"lat too big", 91, 0, true},
		{"lon too small", 0, -181, true},
		{"nan", math.NaN(), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewParticipant(1, "p", tt.lat, tt.lon).Check()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidLocation) {
				t.Errorf("err = %v, want ErrInvalidLocation", err)
			}
		})
	}

	p := &Participant{ID: 2, Give: []Item{{ID: 1}, {ID: 1}}}
	if err := p.Check(); !errors.Is(err, ErrDuplicateItem) {
		t.Errorf("Check() err = %v, want ErrDuplicateItem", err)
	}
}

func TestParticipant_AddWantAssignsIDs(t *testing.T) {
	p := NewParticipant(2, "p", 0, 0)
	p.AddWant(NewValuedWant(0, "books", 12))
	p.AddWant(NewCategoryWant("toys"))
	p.AddWant(NewValuedWant(5, "music", 20))
	p.AddWant(NewValuedWant(0, "games", 30))

	ids := []int{p.Wants[0].ID, p.Wants[1].ID, p.Wants[2].ID, p.Wants[3].ID}
	if ids[0] != 1 || ids[1] != 0 || ids[2] != 5 || ids[3] != 6 {
		t.Errorf("want ids = %v, want [1 0 5 6]", ids)
	}
	if err := p.Check(); err != nil {
		t.Errorf("Check() err = %v", err)
	}

	p.RemoveWant(p.Wants[0])
	if len(p.Wants) != 3 || p.Wants[2].Category != "games" {
		t.Errorf("Wants = %+v, want toys, music and games left", p.Wants)
	}
}

func TestParticipant_CheckRejectsDuplicateWantIDs(t *testing.T) {
	p := &Participant{ID: 2, Wants: []Want{
		NewValuedWant(0, "books", 12),
		NewValuedWant(0, "games", 30),
	}}
	if err := p.Check(); !errors.Is(err, ErrDuplicateWant) {
		t.Errorf("Check() err = %v, want ErrDuplicateWant", err)
	}

	p = &Participant{ID: 3, Wants: []Want{NewCategoryWant("books"), NewCategoryWant("books")}}
	if err := p.Check(); err != nil {
		t.Errorf("repeated category wants: Check() err = %v", err)
	}
}

func TestParticipant_RemoveWant(t *testing.T) {
	p := NewParticipant(1, "p", 0, 0)
	p.AddWant(NewCategoryWant("books"))
	p.AddWant(NewValuedWant(3, "books", 20))
	p.AddWant(NewCategoryWant("books"))
	p.AddWant(NewValuedWant(4, "music", 5))

	p.RemoveWant(NewCategoryWant("books"))
	if len(p.Wants) != 2 {
		t.Fatalf("after category removal len(Wants) = %d, want 2", len(p.Wants))
	}
	p.RemoveWant(NewValuedWant(3, "ignored", 0))
	if len(p.Wants) != 1 || p.Wants[0].ID != 4 {
		t.Errorf("Wants = %+v, want only valued want 4", p.Wants)
	}
}

func TestWant_JSONRoundTrip(t *testing.T) {
	var wants []Want
	if err := json.Unmarshal([]byte(`["books", {"id": 2, "category": "music", "value": 9}, {"category": "toys"}]`), &wants); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(wants) != 3 {
		t.Fatalf("len = %d, want 3", len(wants))
	}
	if wants[0] != NewCategoryWant("books") {
		t.Errorf("wants[0] = %+v", wants[0])
	}
	if wants[1] != NewValuedWant(2, "music", 9) {
		t.Errorf("wants[1] = %+v", wants[1])
	}
	if wants[2].Kind != CategoryWant {
		t.Errorf("object without value should be a category want, got %v", wants[2].Kind)
	}

	data, err := json.Marshal(wants[:2])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["books",{"id":2,"category":"music","value":9}]` {
		t.Errorf("marshal = %s", data)
	}

	var bad Want
	if err := json.Unmarshal([]byte(`""`), &bad); err == nil {
		t.Error("expected error for empty category")
	}
}

func TestWant_YAML(t *testing.T) {
	var wants []Want
	src := "- books\n- {id: 4, category: music, value: 12.5}\n"
	if err := yaml.Unmarshal([]byte(src), &wants); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if wants[0] != NewCategoryWant("books") || wants[1] != NewValuedWant(4, "music", 12.5) {
		t.Errorf("wants = %+v", wants)
	}
}

func TestParticipant_CloneIsDeep(t *testing.T) {
	p := NewParticipant(1, "ann", 1, 2)
	p.AddGive(Item{ID: 10, Category: "books", Value: 5})
	p.AddWant(NewCategoryWant("music"))

	c := p.Clone()
	c.RemoveGive(10)
	c.AddWant(NewCategoryWant("games"))

	if len(p.Give) != 1 {
		t.Errorf("len(p.Give) = %d, want 1 after clone mutation", len(p.Give))
	}
	if len(p.Wants) != 1 {
		t.Errorf("len(p.Wants) = %d, want 1 after clone mutation", len(p.Wants))
	}
	if c.ID != p.ID || c.Lat != p.Lat {
		t.Errorf("clone = %+v, want same identity as %+v", c, p)
	}
}
