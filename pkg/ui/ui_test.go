package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ormasoftchile/appgen/pkg/kernel/answers"
	"github.com/ormasoftchile/appgen/pkg/kernel/tracker"
)

func TestStatusPrinter_PlainLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewStatusPrinter(&buf, true)
	tr := tracker.New(p)

	tr.Begin("Copying Icons")
	p.Detail("[DEVELOP] Copied icon icon.png (1024x1024)")
	tr.Complete("Copying Icons")
	tr.Begin("Installing Packages")
	p.Warn("npx expo install --fix failed")
	tr.Fail("Installing Packages", "exit status 1")

	want := strings.Join([]string{
		"running step 1: Copying Icons",
		"    [DEVELOP] Copied icon icon.png (1024x1024)",
		"succeeded step 1: Copying Icons",
		"running step 2: Installing Packages",
		"    npx expo install --fix failed",
		"failed step 2: Installing Packages",
		"  reason: exit status 1",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestStatusPrinter_Styled(t *testing.T) {
	var buf bytes.Buffer
	p := NewStatusPrinter(&buf, false)
	tr := tracker.New(p)
	tr.Begin("Cleaning Default Files")
	tr.Fail("Cleaning Default Files", "permission denied")
	p.Skipped("Source file not found: /tmp/x.png")

	out := buf.String()
	for _, want := range []string{"Step 1: Cleaning Default Files", GlyphFailed, "FAIL: permission denied", GlyphSkipped, "Source file not found"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStatusPrinter_KeepsSummary(t *testing.T) {
	p := NewStatusPrinter(&bytes.Buffer{}, true)
	if p.LastSummary() != nil {
		t.Fatal("unexpected summary")
	}
	s := &answers.Summary{ProjectName: "Demo"}
	p.Summary(s)
	if p.LastSummary() != s {
		t.Error("summary not kept")
	}
}

func sampleSummary() *answers.Summary {
	return &answers.Summary{
		ProjectName:   "Demo Shop",
		ProjectPath:   "/work/demo-shop",
		ProjectSlug:   "demo-shop",
		BuildVariants: []string{"develop", "prod"},
		IconCount:     2,
		Icons: []answers.VariantOutcome{
			{Variant: "develop", Icon: "/work/demo-shop/src/assets/icons/icon-develop.png", Adaptive: "/work/demo-shop/src/assets/icons/adaptive-icon-develop.png"},
			{Variant: "prod", Skipped: true, Reason: "no icon selected"},
		},
		Warnings: []string{"npx expo install --fix failed"},
	}
}

func TestSummaryMarkdown(t *testing.T) {
	md := SummaryMarkdown(sampleSummary())
	for _, want := range []string{
		"**Project Name:** Demo Shop",
		"**Build Variants:** develop, prod",
		"**Icons Configured:** 2",
		"| prod | skipped: no icon selected |",
		"| develop | icon + adaptive icon |",
		"## Next Steps",
		"1. Navigate to your project: `cd /work/demo-shop`",
		"5. Build the app: `npm run build` (Android) or `npm run build:ios` (iOS)",
		"- npx expo install --fix failed",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestSummaryText(t *testing.T) {
	out := RenderSummary(sampleSummary(), true)
	if strings.Contains(out, "`") || strings.Contains(out, "\x1b[") {
		t.Errorf("plain summary contains markup:\n%s", out)
	}
	if !strings.Contains(out, "1. Navigate to your project: cd /work/demo-shop") {
		t.Errorf("summary:\n%s", out)
	}
}

func TestSummaryText_NoIcons(t *testing.T) {
	s := sampleSummary()
	s.IconCount = 0
	if strings.Contains(SummaryText(s), "Icons Configured") {
		t.Error("zero icon count should be omitted")
	}
}

func TestHeaderAndFailure(t *testing.T) {
	if !strings.Contains(Header(true), HeaderTitle) || !strings.Contains(Header(false), HeaderTitle) {
		t.Error("header missing title")
	}
	got := RenderFailure("Installing Packages", "npm ERR! ERESOLVE", true)
	if got != "Pipeline failed at \"Installing Packages\": npm ERR! ERESOLVE\n" {
		t.Errorf("failure = %q", got)
	}
}
