package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fieldset/pkg/fields"
	"github.com/goliatone/go-fieldset/pkg/forms"
	"github.com/goliatone/go-fieldset/pkg/model"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	prompts      []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
	inputErr     error
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputErr != nil {
		return "", s.inputErr
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

type ticket struct {
	ID       int    `fieldset:"id,pk"`
	Title    string `fieldset:"title,required,maxlength=20"`
	Priority int    `fieldset:"priority,required"`
	Urgent   bool   `fieldset:"urgent"`
	Notes    string `fieldset:"notes,type=text"`
}

func newFieldSet(t *testing.T, value *ticket) *forms.FieldSet {
	t.Helper()
	fs, err := forms.New(model.MustWrap(value))
	if err != nil {
		t.Fatalf("new fieldset: %v", err)
	}
	return fs
}

func TestFill_RetriesInvalidFields(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"", "soon", "Broken login", "2"},
		confirm: []bool{true},
	}
	filler, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new filler: %v", err)
	}
	value := &ticket{}
	bound, err := filler.Fill(context.Background(), newFieldSet(t, value))
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	wantPrompts := []string{"Notes", "Priority *", "Title *", "Urgent", "Priority *"}
	if diff := cmp.Diff(wantPrompts, driver.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"! Priority: Value is not an integer"}, driver.infoMessages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}

	if err := bound.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if value.Title != "Broken login" || value.Priority != 2 || !value.Urgent || value.Notes != "" {
		t.Fatalf("unexpected synced ticket %+v", value)
	}
}

func TestFill_SelectOverlay(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "Slow page"},
		selectIdx: []int{1},
		confirm:   []bool{false},
	}
	filler, _ := New(WithPromptDriver(driver))
	value := &ticket{}
	fs := newFieldSet(t, value)
	priority := fs.Field("priority").Dropdown(fields.Pairs("Low", "1", "High", "3"), false)
	if err := fs.Configure(forms.Overlays(priority)); err != nil {
		t.Fatalf("configure: %v", err)
	}

	bound, err := filler.Fill(context.Background(), fs)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if err := bound.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if value.Priority != 3 || value.Urgent {
		t.Fatalf("unexpected synced ticket %+v", value)
	}
}

func TestFill_SkipsReadonlyAndKeepsHidden(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"4"},
		confirm: []bool{false},
	}
	filler, _ := New(WithPromptDriver(driver))
	value := &ticket{Title: "Existing", Notes: "keep"}
	fs := newFieldSet(t, value)
	if err := fs.Configure(forms.Overlays(fs.Field("notes").Hidden(), fs.Field("title").Readonly())); err != nil {
		t.Fatalf("configure: %v", err)
	}

	bound, err := filler.Fill(context.Background(), fs)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff([]string{"Priority *", "Urgent"}, driver.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	if got, _ := bound.Data().GetOne("ticket--notes"); got != "keep" {
		t.Fatalf("expected the hidden value to be submitted, got %q", got)
	}
}

func TestFill_GivesUpAfterAttempts(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"", "", "Title"},
		confirm: []bool{false},
	}
	filler, _ := New(WithPromptDriver(driver), WithAttempts(1))
	bound, err := filler.Fill(context.Background(), newFieldSet(t, &ticket{}))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if bound == nil || len(bound.Errors().Field("priority")) == 0 {
		t.Fatal("expected the last bound fieldset with its errors")
	}
}

func TestFill_Aborted(t *testing.T) {
	driver := &stubDriver{inputErr: ErrAborted}
	filler, _ := New(WithPromptDriver(driver))
	if _, err := filler.Fill(context.Background(), newFieldSet(t, &ticket{})); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestSelectHelpers(t *testing.T) {
	options := []string{"a", "b", "c"}
	if got := indexOf(options, "c"); got != 2 {
		t.Fatalf("unexpected index %d", got)
	}
	if diff := cmp.Diff([]int{0, 2}, indicesOf(options, []string{"c", "a"})); diff != "" {
		t.Fatalf("indices mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, defaultsFromIndices(options, []int{1, 7})); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}
