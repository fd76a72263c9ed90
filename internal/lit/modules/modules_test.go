package modules_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/signalnine/benchlit/internal/lit"
	"github.com/signalnine/benchlit/internal/lit/modules"
)

type appendLine string

func (a appendLine) MutatePlan(c *lit.Context, plan *lit.Plan) error {
	plan.RunScript = append(plan.RunScript, string(a))
	return nil
}

type failing struct{}

func (failing) MutatePlan(*lit.Context, *lit.Plan) error { return errors.New("nope") }

func TestLoad(t *testing.T) {
	reg, err := modules.Load([]modules.Component{
		{Path: modules.PathPrefix + "first", Impl: appendLine("one")},
		{Path: modules.PathPrefix + "helpers", Impl: "not a module"},
		{Path: "second", Impl: appendLine("two")},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := reg.Names(), []string{"first", "second"}; !reflect.DeepEqual(got, want) {
		t.Errorf("names: got %v, want %v", got, want)
	}
	if _, err := reg.Get("helpers"); !errors.Is(err, modules.ErrUnknownModule) {
		t.Errorf("expected ErrUnknownModule, got %v", err)
	}
}

func TestLoadDuplicate(t *testing.T) {
	_, err := modules.Load([]modules.Component{
		{Path: modules.PathPrefix + "a", Impl: appendLine("1")},
		{Path: "a", Impl: appendLine("2")},
	})
	if err == nil {
		t.Fatal("expected duplicate module error")
	}
}

func TestApply(t *testing.T) {
	reg := modules.NewRegistry()
	reg.Register("one", appendLine("1"))
	reg.Register("two", appendLine("2"))
	reg.Register("bad", failing{})

	plan := &lit.Plan{}
	if err := reg.Apply([]string{"two", "one"}, lit.NewContext("t", "/t"), plan); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if want := []string{"2", "1"}; !reflect.DeepEqual(plan.RunScript, want) {
		t.Errorf("run script: got %v, want %v", plan.RunScript, want)
	}

	if err := reg.Apply([]string{"bad"}, lit.NewContext("t", "/t"), plan); err == nil || err.Error() != "module bad: nope" {
		t.Errorf("unexpected error %v", err)
	}
	if err := reg.Apply([]string{"missing"}, lit.NewContext("t", "/t"), plan); !errors.Is(err, modules.ErrUnknownModule) {
		t.Errorf("expected ErrUnknownModule, got %v", err)
	}
}
