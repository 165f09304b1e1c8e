package rule_test

import (
	"strings"
	"testing"

	"ossbridge/internal/rule"
)

type uploadForm struct {
	Directory string `form:"directory" rule:"required,objdir"`
	Mode      string `form:"directory_mode" rule:"omitempty,oneof=no_subdirectory yyyy_mm_dd_hierarchy yyyy_mm_dd_combined"`
	Expiry    int    `form:"signed_expired" rule:"gte=0"`
}

func TestEngine(t *testing.T) {
	if rule.Engine() == nil {
		t.Fatal("Engine() returned nil")
	}
}

func TestValidateStruct_ObjDir(t *testing.T) {
	if err := rule.ValidateStruct(uploadForm{Directory: "docs/2025"}); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}

	for _, dir := range []string{"/docs", " docs", `\docs`} {
		err := rule.ValidateStruct(uploadForm{Directory: dir})
		errs := rule.Errors(err)
		if errs == nil || !strings.Contains(errs["directory"], "cannot start with") {
			t.Fatalf("directory %q: unexpected errors %v", dir, errs)
		}
	}
}

func TestErrors_UsesFormNames(t *testing.T) {
	err := rule.ValidateStruct(uploadForm{Mode: "weekly", Expiry: -1})
	errs := rule.Errors(err)

	for _, field := range []string{"directory", "directory_mode", "signed_expired"} {
		if _, ok := errs[field]; !ok {
			t.Fatalf("expected error for %s, got %v", field, errs)
		}
	}
	if got := errs.String(); !strings.HasPrefix(got, "directory: is required") {
		t.Fatalf("unexpected ordering: %s", got)
	}
}

func TestValidateVar(t *testing.T) {
	if err := rule.ValidateVar("reports", "required,objdir"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := rule.ValidateVar("/reports", "objdir"); err == nil {
		t.Fatal("expected leading slash to fail")
	}
	if rule.Errors(nil) != nil {
		t.Fatal("nil error should produce no validation errors")
	}
}
